// Package opensearch connects to an OpenSearch cluster and stores event
// documents in it.
//
// New creates a client and fails fast when the cluster does not answer;
// Healthcheck returns a probe for readiness endpoints:
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	ready := opensearch.Healthcheck(client)
//
// Indexer writes one document per created object, keyed "<bucket>.<key>",
// and deletes at most one document per deleted object with a term query on
// bucket.keyword and name.keyword:
//
//	idx, err := opensearch.NewIndexer(client, cfg.Index, opensearch.WithShards(cfg.Shards))
//	if cfg.CreateIndex {
//		err = idx.EnsureIndex(ctx)
//	}
//	err = idx.Insert(ctx, ref.ID(), doc)
//	err = idx.Delete(ctx, ref)
//
// EnsureIndex installs dynamic templates that map bucket, name and instance
// as text with a keyword subfield and create_time as a date.
package opensearch
