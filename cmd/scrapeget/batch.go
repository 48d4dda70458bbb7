package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/scrapekit"
	"github.com/RecoveryAshes/scrapekit/fetch"
)

// urlResult 单个URL的抓取结果
type urlResult struct {
	URL      string `json:"url"`
	FinalURL string `json:"final_url,omitempty"`
	Status   int    `json:"status"`
	Value    any    `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// batchRunner 批量抓取执行器
type batchRunner struct {
	scraper         *scrapekit.Scraper
	mode            string
	opts            fetch.RequestOptions
	delay           time.Duration
	continueOnError bool
}

// Run 顺序处理URL列表, 相邻URL之间按delay间隔
func (b *batchRunner) Run(ctx context.Context, urls []string) ([]urlResult, error) {
	bar := newProgressBar(len(urls), "批量抓取")
	results := make([]urlResult, 0, len(urls))

	for i, rawURL := range urls {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		result := fetchOne(ctx, b.scraper, b.mode, rawURL, b.opts)
		results = append(results, result)
		_ = bar.Add(1)

		if result.Error != "" {
			log.Warn().Str("url", rawURL).Str("error", result.Error).Msg("URL处理失败")
			if !b.continueOnError {
				return results, fmt.Errorf("处理%s失败: %s", rawURL, result.Error)
			}
		}

		if b.delay > 0 && i < len(urls)-1 {
			select {
			case <-time.After(b.delay):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}
	log.Info().Int("total", len(urls)).Int("succeeded", succeeded).Msg("批量抓取完成")
	return results, nil
}

// newProgressBar 创建进度条
func newProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// writeResults 把结果序列化为JSON, 写入文件或标准输出
func writeResults(results []urlResult, outputFile string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("写入结果文件失败: %w", err)
	}
	log.Info().Str("file", outputFile).Int("count", len(results)).Msg("结果已写入文件")
	return nil
}
