package extract

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantNil bool
	}{
		{"时:分:秒", "1:04:11", 3851 * time.Second, false},
		{"分:秒", "4:11", 251 * time.Second, false},
		{"ISO-8601风格", "PT4H11M5S", 15065 * time.Second, false},
		{"仅小时", "PT2H", 2 * time.Hour, false},
		{"分秒字母式", "11m5s", 665 * time.Second, false},
		{"带前后文本", "时长 3:05 左右", 185 * time.Second, false},
		{"不匹配的文本", "three minutes", 0, true},
		{"空输入", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Duration(tt.raw)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Duration() = %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Duration() = nil, want %v", tt.want)
			}
			if *got != tt.want {
				t.Errorf("Duration() = %v, want %v", *got, tt.want)
			}
		})
	}
}
