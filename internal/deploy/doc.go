// Package deploy publishes a finished build to an S3 bucket.
//
// A deployment walks the build output directory and uploads every file,
// mapping paths to object keys under an optional prefix. Hashed assets
// are uploaded with an immutable cache policy; HTML documents are never
// cached so browsers pick up new asset references immediately. With
// pruning enabled, objects in the bucket that no longer correspond to a
// local file are deleted after a successful upload pass.
package deploy
