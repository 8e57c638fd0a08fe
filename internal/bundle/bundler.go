package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/husk-build/husk/internal/buildcfg"
	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/errors"
)

const tracerName = "husk/bundle"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// OutDir is the directory the build was written to.
	OutDir string

	// Manifest maps source-relative names to output-relative hashed names.
	Manifest map[string]string

	// JSBytes is the total size of bundled JavaScript.
	JSBytes int64
}

// Options configures the pipeline.
type Options struct {
	// Config is the project manifest.
	Config *config.Config

	// Resolved is the environment-resolved build configuration.
	Resolved buildcfg.BuildConfiguration

	// Env is the environment snapshot the build ran under; only variables
	// matching the resolved prefixes reach the bundle.
	Env buildcfg.Environ

	// OutDir overrides the manifest's build output directory.
	OutDir string

	// Logger receives structured build logs.
	Logger zerolog.Logger
}

// Pipeline performs front-end builds.
type Pipeline struct {
	cfg      *config.Config
	resolved buildcfg.BuildConfiguration
	env      buildcfg.Environ
	outDir   string
	log      zerolog.Logger
	tracer   trace.Tracer
}

// New creates a pipeline from options.
func New(opts Options) *Pipeline {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = opts.Config.OutputPath()
	}
	return &Pipeline{
		cfg:      opts.Config,
		resolved: opts.Resolved,
		env:      opts.Env,
		outDir:   outDir,
		log:      opts.Logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// OutDir returns the directory builds are written to.
func (p *Pipeline) OutDir() string {
	return p.outDir
}

// Clean removes the build output directory.
func (p *Pipeline) Clean() error {
	return os.RemoveAll(p.outDir)
}

// Build compiles every entry point and writes the output tree.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "bundle.build",
		trace.WithAttributes(
			attribute.String("husk.target", p.resolved.Target),
			attribute.String("husk.minify", string(p.resolved.Minify)),
			attribute.Bool("husk.sourcemaps", p.resolved.SourceMaps),
		))
	defer span.End()

	result := &Result{
		OutDir:   p.outDir,
		Manifest: make(map[string]string),
	}

	if err := os.RemoveAll(p.outDir); err != nil {
		return nil, p.fail(span, errors.New("E204").Wrap(err))
	}
	if err := os.MkdirAll(filepath.Join(p.outDir, "assets"), 0755); err != nil {
		return nil, p.fail(span, errors.New("E204").Wrap(err))
	}

	// Entry order is fixed so output and manifest stay deterministic.
	names := make([]string, 0, len(p.resolved.EntryPoints))
	for name := range p.resolved.EntryPoints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := p.resolved.EntryPoints[name]
		span.AddEvent("entry", trace.WithAttributes(attribute.String("husk.entry", name)))
		if err := p.buildEntry(ctx, name, rel, result); err != nil {
			return nil, p.fail(span, err)
		}
	}

	if err := p.copyStatic(result.Manifest); err != nil {
		return nil, p.fail(span, err)
	}

	if err := p.writeManifest(result.Manifest); err != nil {
		return nil, p.fail(span, err)
	}

	result.Duration = time.Since(start)
	span.SetStatus(codes.Ok, "")
	p.log.Info().
		Dur("duration", result.Duration).
		Int64("js_bytes", result.JSBytes).
		Str("out", p.outDir).
		Msg("build complete")

	return result, nil
}

// buildEntry bundles one entry document and its module scripts.
func (p *Pipeline) buildEntry(ctx context.Context, name, rel string, result *Result) error {
	htmlPath := p.cfg.EntryPath(rel)
	raw, err := os.ReadFile(htmlPath)
	if err != nil {
		return errors.New("E202").
			WithDetail(fmt.Sprintf("entry %q resolves to %s", name, htmlPath)).
			WithSuggestion("Run 'husk create' to scaffold the entry documents").
			Wrap(err)
	}

	html := string(raw)
	scripts := ModuleScripts(html)
	if len(scripts) == 0 {
		return errors.New("E203").
			WithDetail(fmt.Sprintf("entry %q (%s) has no module script", name, rel))
	}

	rewrites := make(map[string]string, len(scripts))
	for _, src := range scripts {
		if err := ctx.Err(); err != nil {
			return err
		}
		hashed, size, err := p.bundleScript(htmlPath, src)
		if err != nil {
			return err
		}
		rewrites[src] = "/" + hashed
		result.Manifest[src] = hashed
		result.JSBytes += size
		p.log.Debug().Str("entry", name).Str("script", src).Str("out", hashed).Msg("bundled script")
	}

	outHTML := RewriteScripts(html, rewrites)
	outPath := filepath.Join(p.outDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return errors.New("E204").Wrap(err)
	}
	if err := os.WriteFile(outPath, []byte(outHTML), 0644); err != nil {
		return errors.New("E204").Wrap(err)
	}
	result.Manifest[rel] = rel

	return nil
}

// bundleScript runs esbuild for one module script and writes the hashed
// output (plus source map, when enabled) under assets/.
func (p *Pipeline) bundleScript(htmlPath, src string) (string, int64, error) {
	// Root-relative references ("/src/main.js") resolve against the project
	// root, everything else against the document's directory.
	var entry string
	if strings.HasPrefix(src, "/") {
		entry = filepath.Join(p.cfg.Dir(), filepath.FromSlash(strings.TrimPrefix(src, "/")))
	} else {
		entry = filepath.Join(filepath.Dir(htmlPath), filepath.FromSlash(src))
	}

	minify := p.resolved.Minify == buildcfg.MinifyEsbuild

	sourcemap := api.SourceMapNone
	if p.resolved.SourceMaps {
		sourcemap = api.SourceMapLinked
	}

	build := api.Build(api.BuildOptions{
		EntryPoints:       []string{entry},
		EntryNames:        "[name]-[hash]",
		Bundle:            true,
		Write:             false,
		AbsWorkingDir:     p.outDir,
		Outdir:            filepath.Join(p.outDir, "assets"),
		Format:            api.FormatESModule,
		Engines:           engineTargets(p.resolved.Target),
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         sourcemap,
		External:          p.resolved.ExcludedOptimizationDeps,
		Define:            defineEnv(p.env, p.resolved.AllowedEnvPrefixes),
	})

	if len(build.Errors) > 0 {
		msg := build.Errors[0]
		err := errors.New("E201").WithDetail(msg.Text)
		if msg.Location != nil {
			err = err.WithLocation(msg.Location.File, msg.Location.Line, msg.Location.Column)
		}
		for _, m := range build.Errors {
			p.log.Error().Str("error", m.Text).Msg("bundle error")
		}
		return "", 0, err
	}
	for _, m := range build.Warnings {
		p.log.Warn().Str("warning", m.Text).Msg("bundle warning")
	}

	var (
		jsRel  string
		jsSize int64
	)
	for _, file := range build.OutputFiles {
		rel, err := filepath.Rel(p.outDir, file.Path)
		if err != nil {
			rel = filepath.Base(file.Path)
		}
		rel = filepath.ToSlash(rel)
		if err := os.MkdirAll(filepath.Dir(file.Path), 0755); err != nil {
			return "", 0, errors.New("E204").Wrap(err)
		}
		if err := os.WriteFile(file.Path, file.Contents, 0644); err != nil {
			return "", 0, errors.New("E204").Wrap(err)
		}
		if strings.HasSuffix(rel, ".js") {
			jsRel = rel
			jsSize = int64(len(file.Contents))
		}
	}

	if jsRel == "" {
		return "", 0, errors.New("E201").
			WithDetail(fmt.Sprintf("no JavaScript output produced for %s", src))
	}
	return jsRel, jsSize, nil
}

// copyStatic copies static assets into the output with content hashes.
func (p *Pipeline) copyStatic(manifest map[string]string) error {
	srcDir := p.cfg.StaticPath()
	if srcDir == "" {
		return nil
	}
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return nil
	}

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		hash, err := hashFile(path)
		if err != nil {
			return errors.New("E204").Wrap(err)
		}
		ext := filepath.Ext(rel)
		base := strings.TrimSuffix(filepath.Base(rel), ext)
		hashedName := fmt.Sprintf("%s-%s%s", base, hash[:8], ext)
		destRel := "assets/" + hashedName

		destPath := filepath.Join(p.outDir, "assets", hashedName)
		if err := copyFile(path, destPath); err != nil {
			return errors.New("E204").Wrap(err)
		}

		manifest[rel] = destRel
		return nil
	})
}

// writeManifest writes the asset manifest next to the output.
func (p *Pipeline) writeManifest(manifest map[string]string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	path := filepath.Join(p.outDir, "manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E204").Wrap(err)
	}
	return nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// engineTargets maps a resolved compatibility identifier to esbuild engines.
func engineTargets(target string) []api.Engine {
	switch target {
	case buildcfg.TargetWindows:
		return []api.Engine{{Name: api.EngineChrome, Version: "105"}}
	default:
		return []api.Engine{{Name: api.EngineSafari, Version: "13"}}
	}
}

// defineEnv builds the import.meta.env constant map from the exposed subset
// of the environment. Values are injected as JSON string literals.
func defineEnv(env buildcfg.Environ, prefixes []string) map[string]string {
	exposed := buildcfg.Exposed(env, prefixes)
	defines := make(map[string]string, len(exposed))
	for key, value := range exposed {
		quoted, err := json.Marshal(value)
		if err != nil {
			continue
		}
		defines["import.meta.env."+key] = string(quoted)
	}
	return defines
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies a file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
