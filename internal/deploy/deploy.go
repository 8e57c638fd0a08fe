package deploy

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
)

const tracerName = "husk/deploy"

// ObjectStore is the subset of the S3 API a deployment needs.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Deployer uploads build output to an object store.
type Deployer struct {
	client ObjectStore
	target config.DeployConfig
	log    zerolog.Logger
	tracer trace.Tracer
}

// Result summarizes a completed deployment.
type Result struct {
	Uploaded []string
	Deleted  []string
	Bytes    int64
	Duration time.Duration
}

// New creates a Deployer over an existing S3 client.
func New(client ObjectStore, target config.DeployConfig, logger zerolog.Logger) *Deployer {
	return &Deployer{
		client: client,
		target: target,
		log:    logger,
		tracer: otel.Tracer(tracerName),
	}
}

// NewFromEnv creates a Deployer from the default AWS credential chain.
// The manifest's deploy.region overrides the environment's region.
func NewFromEnv(ctx context.Context, target config.DeployConfig, logger zerolog.Logger) (*Deployer, error) {
	if target.Bucket == "" {
		return nil, errors.New("E403")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if target.Region != "" {
		opts = append(opts, awsconfig.WithRegion(target.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E401").Wrap(err)
	}

	return New(s3.NewFromConfig(awsCfg), target, logger), nil
}

// Deploy uploads every file under outDir, then prunes stale objects when
// the target enables it. Pruning only runs after a fully successful
// upload pass so a failed deploy never deletes live objects.
func (d *Deployer) Deploy(ctx context.Context, outDir string) (*Result, error) {
	ctx, span := d.tracer.Start(ctx, "deploy",
		trace.WithAttributes(
			attribute.String("deploy.bucket", d.target.Bucket),
			attribute.String("deploy.prefix", d.target.Prefix),
		))
	defer span.End()

	start := time.Now()

	files, err := collectFiles(outDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("E404").WithDetail("directory: " + outDir)
	}

	result := &Result{}
	uploaded := make(map[string]bool, len(files))

	for _, rel := range files {
		key := ObjectKey(d.target.Prefix, rel)
		size, err := d.putFile(ctx, filepath.Join(outDir, rel), key)
		if err != nil {
			return nil, errors.New("E402").
				WithDetail("object: " + key).
				Wrap(err)
		}
		uploaded[key] = true
		result.Uploaded = append(result.Uploaded, key)
		result.Bytes += size

		d.log.Debug().Str("key", key).Int64("bytes", size).Msg("uploaded")
	}

	if d.target.Prune {
		deleted, err := d.prune(ctx, uploaded)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
	}

	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("deploy.uploaded", len(result.Uploaded)))

	d.log.Info().
		Int("uploaded", len(result.Uploaded)).
		Int("deleted", len(result.Deleted)).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("deploy complete")

	return result, nil
}

func (d *Deployer) putFile(ctx context.Context, path, key string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(d.target.Bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(ContentTypeFor(path)),
		CacheControl: aws.String(CacheControlFor(key)),
	})
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// prune deletes objects under the prefix that were not part of this
// deployment.
func (d *Deployer) prune(ctx context.Context, uploaded map[string]bool) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(d.target.Bucket),
	}
	if d.target.Prefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(d.target.Prefix, "/") + "/")
	}

	var stale []string
	paginator := s3.NewListObjectsV2Paginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("E402").WithDetail("listing bucket for prune").Wrap(err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && !uploaded[*obj.Key] {
				stale = append(stale, *obj.Key)
			}
		}
	}

	for _, key := range stale {
		_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(d.target.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, errors.New("E402").WithDetail("deleting stale object: " + key).Wrap(err)
		}
		d.log.Debug().Str("key", key).Msg("pruned")
	}

	return stale, nil
}

// collectFiles returns the relative paths of all regular files under
// root, sorted for deterministic upload order.
func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E404").WithDetail("directory: " + root)
		}
		return nil, errors.New("E402").Wrap(err)
	}
	sort.Strings(files)
	return files, nil
}

// ObjectKey maps a relative output path to an object key, always using
// forward slashes regardless of the host OS.
func ObjectKey(prefix, rel string) string {
	key := filepath.ToSlash(rel)
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

// ContentTypeFor guesses the MIME type of a file from its extension.
func ContentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".json", ".map":
		return "application/json"
	case ".wasm":
		return "application/wasm"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControlFor chooses the caching policy for an object key. Hashed
// assets never change under the same name, so they cache forever; HTML
// documents must always revalidate to see new asset references.
func CacheControlFor(key string) string {
	if strings.HasSuffix(key, ".html") {
		return "no-cache"
	}
	if strings.Contains(key, "assets/") {
		return "public, max-age=31536000, immutable"
	}
	return "public, max-age=3600"
}
