// Package async provides generic futures for callback-free asynchronous work.
//
// Run starts a computation and returns a Future; Then chains a continuation
// that only runs when the previous step succeeded:
//
//	lookup := async.Run(ctx, ref, metadata.Get)
//	indexed := async.Then(ctx, lookup, func(ctx context.Context, md Metadata) (Record, error) {
//		return buildRecord(ref, md)
//	})
//	indexed.OnComplete(func(rec Record, err error) {
//		if err != nil {
//			log.Error("enrichment dropped", logger.Error(err))
//		}
//	})
//
// Await blocks for the result, AwaitWithTimeout bounds the wait with
// ErrTimeout and IsComplete polls. Panics inside a computation are recovered
// and reported as errors.
package async
