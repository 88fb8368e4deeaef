package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Kind
		wantHz uint32
	}{
		{name: "start", input: "start", want: Start},
		{name: "stop", input: "stop", want: Stop},
		{name: "start with newline", input: "start\n", want: Start},
		{name: "stop with crlf", input: "stop\r\n", want: Stop},
		{name: "nul terminated", input: "start\x00\x00", want: Start},
		{name: "frequency", input: "freq 5", want: SetFrequency, wantHz: 5},
		{name: "frequency with newline", input: "freq 12\n", want: SetFrequency, wantHz: 12},
		{name: "frequency max", input: "freq 4294967295", want: SetFrequency, wantHz: 4294967295},
		{name: "on", input: "on", want: On},
		{name: "off", input: "off\n", want: Off},
		{name: "empty", input: "", want: Unknown},
		{name: "only newline", input: "\n", want: Unknown},
		{name: "upper case", input: "START", want: Unknown},
		{name: "trailing space", input: "start ", want: Unknown},
		{name: "start prefix", input: "started", want: Unknown},
		{name: "frequency zero", input: "freq 0", want: Unknown},
		{name: "frequency negative", input: "freq -3", want: Unknown},
		{name: "frequency missing", input: "freq ", want: Unknown},
		{name: "frequency no space", input: "freq5", want: Unknown},
		{name: "frequency not numeric", input: "freq fast", want: Unknown},
		{name: "frequency overflow", input: "freq 4294967296", want: Unknown},
		{name: "frequency with sign", input: "freq +5", want: Unknown},
		{name: "frequency two spaces", input: "freq  5", want: Unknown},
		{name: "frequency trailing space", input: "freq 5 ", want: Unknown},
		{name: "banana", input: "banana", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.input))
			if got.Kind != tt.want {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.input, got.Kind, tt.want)
			}
			if got.FrequencyHz != tt.wantHz {
				t.Errorf("Parse(%q).FrequencyHz = %d, want %d", tt.input, got.FrequencyHz, tt.wantHz)
			}
			if got.Kind == Unknown && got.Reason == "" {
				t.Errorf("Parse(%q) is Unknown without a reason", tt.input)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if got := Kind(42).String(); got != "unknown" {
		t.Errorf("Kind(42).String() = %q, want unknown", got)
	}
	if got := SetFrequency.String(); got != "freq" {
		t.Errorf("SetFrequency.String() = %q, want freq", got)
	}
}
