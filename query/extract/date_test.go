package extract

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		layouts []string
		want    time.Time
		wantNil bool
	}{
		{
			name:    "英文月份写法",
			raw:     "Today: Jan 5, 2024",
			layouts: []string{"Jan 2, 2006"},
			want:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "ISO日期",
			raw:     "发布于 2024-01-05",
			layouts: []string{"2006-01-02"},
			want:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "日-月-年写法",
			raw:     "05-01-2024",
			layouts: []string{"02-01-2006"},
			want:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "带时分秒",
			raw:     "更新: 2024-01-05 13:45:30",
			layouts: []string{"2006-01-02 15:04:05"},
			want:    time.Date(2024, 1, 5, 13, 45, 30, 0, time.UTC),
		},
		{
			name:    "多布局依次尝试",
			raw:     "Jan 5, 2024",
			layouts: []string{"2006-01-02", "Jan 2, 2006"},
			want:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "无法解析的文本返回nil而非报错",
			raw:     "gibberish",
			layouts: []string{"Jan 2, 2006"},
			wantNil: true,
		},
		{
			name:    "缺少布局返回nil(用法错误由查询层处理)",
			raw:     "Jan 5, 2024",
			layouts: nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.raw, tt.layouts, time.UTC, nil)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Date() = %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Date() = nil, want %v", tt.want)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Date() = %v, want %v", *got, tt.want)
			}
		})
	}
}

func TestDate_Timezone(t *testing.T) {
	shanghai, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Skipf("时区数据不可用: %v", err)
	}
	got := Date("2024-01-05 08:00", []string{"2006-01-02 15:04"}, shanghai, nil)
	if got == nil {
		t.Fatal("Date() = nil")
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date() = %v, want %v (UTC等价时刻)", *got, want)
	}
}
