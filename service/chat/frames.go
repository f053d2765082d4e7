package chat

import (
	"encoding/json"

	"MChat/logger"
	"MChat/tools/decode"
	"MChat/tools/errs"
)

// Frame is the wire envelope for every event, both directions:
// {"event": "...", "data": {...}}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ParseFrame decodes an inbound envelope. Data stays raw until a handler
// decodes it against its own payload type.
func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.ErrValidation.WrapMsg("malformed frame", "err", err)
	}
	if f.Event == "" {
		return nil, errs.ErrValidation.WrapMsg("frame has no event")
	}
	return &f, nil
}

// DecodePayload decodes a frame's data into the handler's payload type.
// Decoding goes through a dynamic map so clients with loose typing
// ("123" for an int) still parse.
func DecodePayload[T any](f *Frame) (*T, error) {
	m := map[string]any{}
	if len(f.Data) > 0 {
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return nil, errs.ErrValidation.WrapMsg("malformed payload", "event", f.Event)
		}
	}
	out, err := decode.DecodeMap[T](m)
	if err != nil {
		return nil, errs.ErrValidation.WrapMsg("bad payload", "event", f.Event, "err", err)
	}
	return out, nil
}

// MarshalFrame builds an outbound envelope. Payloads are our own types,
// so a marshal failure is a programming error: log and drop.
func MarshalFrame(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[frames] marshal payload failed event=%s err=%v", event, err)
		return nil
	}
	raw, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		logger.Errorf("[frames] marshal frame failed event=%s err=%v", event, err)
		return nil
	}
	return raw
}
