package bot

import "testing"

func TestEncodeParseRoundTrip(t *testing.T) {
	tests := []struct {
		data      string
		action    string
		messageID int
		index     int
	}{
		{encodeCallback(actionSearch, 42), actionSearch, 42, -1},
		{encodeCallback(actionEdit, 7), actionEdit, 7, -1},
		{encodeCallback(actionCancel, 12345), actionCancel, 12345, -1},
		{encodeCallback(actionNone, 1), actionNone, 1, -1},
		{encodeChoice(42, 0), actionChoose, 42, 0},
		{encodeChoice(42, 4), actionChoose, 42, 4},
	}

	for _, tt := range tests {
		cb, err := parseCallback(tt.data)
		if err != nil {
			t.Errorf("parseCallback(%q): %v", tt.data, err)
			continue
		}
		if cb.Action != tt.action || cb.MessageID != tt.messageID || cb.Index != tt.index {
			t.Errorf("parseCallback(%q) = %+v, want {%s %d %d}",
				tt.data, cb, tt.action, tt.messageID, tt.index)
		}
	}
}

func TestParseCallbackRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"search",
		"search:abc",
		"search:1:2",
		"movie:1",
		"movie:1:x",
		"explode:1",
	}
	for _, data := range bad {
		if _, err := parseCallback(data); err == nil {
			t.Errorf("parseCallback(%q) accepted malformed data", data)
		}
	}
}
