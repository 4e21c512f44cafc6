// Package objectstore describes where tenant data lives remotely and checks
// that it is reachable.
//
// Two credential blocks are supported and they are mutually exclusive:
// Amazon S3 (or an S3-compatible service via S3_ENDPOINT) and Cloudflare R2
// (addressed by account id). Config.Validate rejects a config that fills in
// both or leaves one half-filled. A config with neither block is valid and
// means tenant data stays on local disk.
//
// Config.URL produces the object URL the analytical engine understands
// ("s3://bucket/key" or "r2://bucket/key"), and the credential accessors feed
// the engine's secret definition.
//
// Verifier issues a HeadBucket through aws-sdk-go-v2 so a wrong bucket name or
// key pair is reported at startup rather than on the first tenant query:
//
//	v, err := objectstore.NewVerifier(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := v.Verify(ctx); err != nil {
//	    // errors.Is(err, objectstore.ErrAccessDenied) ...
//	}
package objectstore
