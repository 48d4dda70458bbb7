package query

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/scrapekit/errs"
	"github.com/RecoveryAshes/scrapekit/query/extract"
)

// 未绑定查询命名空间: 同一套操作在没有预先绑定Context时的入口。
// 首个参数必须是已初始化的*Context或原始DOM元素(自动包装为临时Context),
// 其他类型一律是INVALID_CONTEXT错误——输入种类只在入口处显式判定一次。

// From 将调用方输入归一为查询上下文
func From(v any) (*Context, error) {
	switch in := v.(type) {
	case *Context:
		if in == nil {
			return nil, errs.New(errs.KindInvalidContext, "Context为nil")
		}
		return in, nil
	case *html.Node:
		return Init(in, nil)
	case *goquery.Selection:
		return Init(in, nil)
	}
	return nil, errs.Newf(errs.KindInvalidContext, "未绑定查询不接受 %T 类型的上下文", v)
}

func Element(v any, sel Selector, opts ...Options) (*Context, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Element(sel, opts...), nil
}

func Elements(v any, sel Selector, opts ...Options) ([]*Context, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Elements(sel, opts...), nil
}

func Exists(v any, sel Selector, opts ...Options) (bool, error) {
	c, err := From(v)
	if err != nil {
		return false, err
	}
	return c.Exists(sel, opts...), nil
}

func Count(v any, sel Selector, opts ...Options) (int, error) {
	c, err := From(v)
	if err != nil {
		return 0, err
	}
	return c.Count(sel, opts...), nil
}

func Content(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Content(sel, opts...), nil
}

func Contents(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Contents(sel, opts...), nil
}

func Text(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Text(sel, opts...), nil
}

func Texts(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Texts(sel, opts...), nil
}

func HTML(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.HTML(sel, opts...), nil
}

func HTMLs(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.HTMLs(sel, opts...), nil
}

func Attribute(v any, sel Selector, attr string, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Attribute(sel, attr, opts...), nil
}

func Attributes(v any, sel Selector, attr string, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Attributes(sel, attr, opts...), nil
}

func URL(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.URL(sel, opts...), nil
}

func URLs(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.URLs(sel, opts...), nil
}

func Image(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Image(sel, opts...), nil
}

func Images(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Images(sel, opts...), nil
}

func Video(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Video(sel, opts...), nil
}

func Videos(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Videos(sel, opts...), nil
}

func Poster(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Poster(sel, opts...), nil
}

func Posters(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Posters(sel, opts...), nil
}

func Dataset(v any, sel Selector, opts ...Options) (map[string]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Dataset(sel, opts...), nil
}

func Datasets(v any, sel Selector, opts ...Options) ([]map[string]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Datasets(sel, opts...), nil
}

func SourceSet(v any, sel Selector, opts ...Options) ([]extract.Source, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.SourceSet(sel, opts...), nil
}

func SourceSets(v any, sel Selector, opts ...Options) ([][]extract.Source, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.SourceSets(sel, opts...), nil
}

func Style(v any, sel Selector, property string, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Style(sel, property, opts...), nil
}

func Styles(v any, sel Selector, property string, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Styles(sel, property, opts...), nil
}

func StyleURL(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.StyleURL(sel, opts...), nil
}

func StyleURLs(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.StyleURLs(sel, opts...), nil
}

func Background(v any, sel Selector, opts ...Options) (string, error) {
	c, err := From(v)
	if err != nil {
		return "", err
	}
	return c.Background(sel, opts...), nil
}

func Backgrounds(v any, sel Selector, opts ...Options) ([]string, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Backgrounds(sel, opts...), nil
}

func Number(v any, sel Selector, opts ...Options) (*float64, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Number(sel, opts...), nil
}

func Numbers(v any, sel Selector, opts ...Options) ([]float64, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Numbers(sel, opts...), nil
}

func Date(v any, sel Selector, opts ...Options) (*time.Time, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Date(sel, opts...)
}

func Dates(v any, sel Selector, opts ...Options) ([]time.Time, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Dates(sel, opts...)
}

func Duration(v any, sel Selector, opts ...Options) (*time.Duration, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.Duration(sel, opts...), nil
}

func JSON(v any, sel Selector, opts ...Options) (any, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.JSON(sel, opts...), nil
}

func JSONs(v any, sel Selector, opts ...Options) ([]any, error) {
	c, err := From(v)
	if err != nil {
		return nil, err
	}
	return c.JSONs(sel, opts...), nil
}
