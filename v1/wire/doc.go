// Package wire splits framed Avro messages into their header and payload.
//
// A frame is laid out as:
//
//	byte 0        : magic identifier (configurable, default 0xFF)
//	byte 1..N     : schema id, little-endian, N in [0,4] (default 4)
//	byte N+1..end : Avro binary payload
//
// The schema id width is clamped: any configured width below 0 or above 4 is
// treated as 4. This mirrors the behavior of the producers that emit these
// frames and is kept on purpose, so a misconfigured width of 6 decodes exactly
// like the default instead of failing.
//
// Basic Usage:
//
//	frame, err := wire.Parse(buf, 4, 0xFF)
//	if err != nil {
//		if wire.IsBadMagicError(err) {
//			// not one of ours
//		}
//		return err
//	}
//	fmt.Println(frame.SchemaID, len(frame.Payload))
//
// Parse never copies the payload: Frame.Payload aliases the input buffer, so
// callers must not mutate the buffer while the frame is in use.
package wire
