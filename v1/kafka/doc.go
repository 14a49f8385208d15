// Package kafka feeds framed Avro records from a Kafka topic into the decoder.
//
// A Consumer fetches messages from a consumer group, decodes each value and
// passes accepted records to a Handler. Offsets are committed after the
// handler returns, and also for rejected records, which are logged and
// skipped:
//
//	c, err := kafka.NewConsumer(kafka.Config{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "events",
//	    GroupID: "avroframe",
//	    Workers: 4,
//	}, dec, log)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	err = c.Run(ctx, func(ctx context.Context, msg kafka.Message, rec record.Record) error {
//	    return sink.Write(ctx, rec)
//	})
//
// With Workers > 1 messages are decoded in parallel but handed over and
// committed strictly in fetch order. Handler errors stop Run; the failing
// message stays uncommitted and is redelivered after a restart.
//
// TLS and SASL (PLAIN, SCRAM-SHA-256, SCRAM-SHA-512) are configured through
// Config.TLS and Config.SASL.
package kafka
