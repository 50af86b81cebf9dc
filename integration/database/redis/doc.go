// Package redis connects to Redis and relays broadcasts between service
// instances over a pub/sub channel.
//
// Connect validates the redis:// or rediss:// URL and pings the server with
// exponential backoff:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// A Relay publishes each enriched document together with its filter root.
// Every instance runs the relay loop and hands received messages to its local
// hub, so the publishing instance delivers through the same path as its peers:
//
//	relay := redis.NewRelay(client, cfg.Channel, registry, redis.WithLogger(log))
//	go relay.Run(ctx)
//	pipeline := enrich.New(md, idx, registry, enrich.WithRelay(relay))
//
// Integral metadata values survive the round trip as int64 so that filter
// expressions see the same types on every instance. Malformed messages are
// logged and dropped.
//
// Healthcheck returns a ping probe for the readiness endpoint.
package redis
