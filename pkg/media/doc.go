// Package media stores payment receipt screenshots in S3 or any S3-compatible service.
//
// S3Host accepts images only, sniffing the first bytes of every upload rather than trusting the
// declared content type, and returns the object key as the opaque reference kept on the payment
// request. URL turns a reference back into a public link for the admin review screen.
//
//	host, err := media.NewS3Host(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	ledger := payment.NewLedger(store, payment.WithScreenshots(host))
package media
