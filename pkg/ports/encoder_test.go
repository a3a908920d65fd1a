package ports

import "testing"

func TestParseCodecName(t *testing.T) {
	tests := []struct {
		name    string
		want    CodecID
		wantErr bool
	}{
		{"h264enc", CodecH264, false},
		{"hevcenc", CodecHEVC, false},
		{"H264enc", CodecH264, true},
		{"HEVCENC", CodecH264, true},
		{"h264", CodecH264, true},
		{"", CodecH264, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCodecName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCodecName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCodecName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestEncoderConfig_MaxBFrames(t *testing.T) {
	tests := []struct {
		params []EncParam
		want   int
	}{
		{nil, 0},
		{[]EncParam{{Key: "intra_pic_rate", Value: "100"}, {Key: "gop_size", Value: "1"}}, 0},
		{[]EncParam{{Key: "gop_size", Value: "4"}}, 3},
		{[]EncParam{{Key: "gop_size", Value: "4"}, {Key: "gop_size", Value: "1"}}, 0},
		{[]EncParam{{Key: "gop_size", Value: "many"}}, 0},
	}
	for _, tt := range tests {
		if got := (EncoderConfig{Params: tt.params}).MaxBFrames(); got != tt.want {
			t.Errorf("MaxBFrames(%v) = %d, want %d", tt.params, got, tt.want)
		}
	}
}
