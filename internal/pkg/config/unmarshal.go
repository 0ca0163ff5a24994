package config

import (
	"github.com/mitchellh/mapstructure"
)

// Unmarshal decodes a raw config map into v. Durations are parsed from
// strings like "5s" and every encoding.TextUnmarshaler, like
// datasize.ByteSize, from its text form.
func Unmarshal(cfg map[string]any, v any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(cfg)
}
