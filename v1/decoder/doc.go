// Package decoder turns framed Avro buffers into records.
//
// A frame is a magic byte, a little-endian schema id of SchemaIDWidth bytes
// and an Avro binary payload. For every buffer the Decoder
//
//  1. checks and strips the frame header (package wire),
//  2. resolves the schema id through a Resolver, normally the shared
//     *schema_registry.Cache,
//  3. decodes the payload (package avro),
//  4. flattens the top-level record and adds schema_id and schema_source
//     (package record).
//
// A failure at any step rejects only the current record. The error is a
// *RejectError carrying the stage, so callers can count or log rejections
// and move on:
//
//	rec, err := dec.Decode(ctx, msg.Value)
//	if err != nil {
//	    if decoder.StageOf(err) == decoder.StageFraming {
//	        // not one of ours
//	    }
//	    return nil
//	}
//
// Frames with the wrong magic byte are rejected like any other bad input but
// logged at Debug, since topics shared with other producers see them all the
// time.
//
// Decoded fields named schema_id or schema_source are replaced by the
// metadata; the Decoder logs a warning when that happens.
package decoder
