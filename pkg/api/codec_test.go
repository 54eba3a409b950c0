package api

import (
	"strings"
	"testing"

	"github.com/uilacceb/splitter/internal/money"
)

func TestCodec(t *testing.T) {
	var codec Codec

	t.Run("money travels as a string", func(t *testing.T) {
		data, err := codec.Marshal(&NetResponse{Obligations: []Obligation{{From: "R", To: "A", Amount: money.MustParse("109.6")}}})
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"amount":"109.60"`) {
			t.Errorf("unexpected encoding %s", data)
		}
	})

	t.Run("numbers are accepted", func(t *testing.T) {
		var req NetRequest
		if err := codec.Unmarshal([]byte(`{"obligations":[{"from":"A","to":"B","amount":12.5}]}`), &req); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if req.Obligations[0].Amount != money.Cents(1250) {
			t.Errorf("amount = %s", req.Obligations[0].Amount)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		var req DeleteEventRequest
		if err := codec.Unmarshal([]byte(`{"event":"x"}`), &req); err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		var req DeleteEventRequest
		if err := codec.Unmarshal(nil, &req); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
