// Package s3 resolves storage objects to flat metadata with the AWS SDK v2
// HeadObject call. It works against Amazon S3 and S3-compatible gateways such
// as Ceph RGW or MinIO.
//
//	svc, err := s3.New(ctx, s3.Config{
//		Endpoint:        "http://rgw.local:7480",
//		Region:          "us-east-1",
//		AccessKeyID:     "...",
//		SecretAccessKey: "...",
//		ForcePathStyle:  true,
//	})
//	md, err := svc.Get(ctx, event.ObjectRef{Bucket: "photos", Key: "cat.png"})
//	// md["content_type"] == "image/png", md["meta_owner"] == "alice"
//
// Errors are classified into package sentinels such as ErrObjectNotFound and
// ErrAccessDenied. Tests inject a fake client with WithS3Client.
package s3
