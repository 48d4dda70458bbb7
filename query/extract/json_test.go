package extract

import (
	"reflect"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"对象", `{"a": 1}`, map[string]any{"a": float64(1)}},
		{"数组", `[1, 2]`, []any{float64(1), float64(2)}},
		{"带空白", "  {\"b\": true}\n", map[string]any{"b": true}},
		{"解析失败返回nil而非报错", "{broken", nil},
		{"空输入", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JSON(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("JSON() = %v, want %v", got, tt.want)
			}
		})
	}
}
