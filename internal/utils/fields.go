package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// StringField returns the trimmed string at key, or "" when absent or not a string.
func StringField(s *structpb.Struct, key string) string {
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// BoolField returns the bool at key, or def when absent.
func BoolField(s *structpb.Struct, key string, def bool) bool {
	v, ok := s.GetFields()[key]
	if !ok {
		return def
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return def
	}
	return v.GetBoolValue()
}

// StringListField reads a list of strings. An absent key is an empty list.
func StringListField(s *structpb.Struct, key string) ([]string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%s must be a list of strings", key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		sv, isString := item.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out = append(out, strings.TrimSpace(sv.StringValue))
	}
	return out, nil
}

// BytesField decodes the base64 string at key.
func BytesField(s *structpb.Struct, key string) ([]byte, error) {
	raw := StringField(s, key)
	if raw == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be base64: %w", key, err)
	}
	return b, nil
}
