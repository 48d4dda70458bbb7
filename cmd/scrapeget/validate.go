package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// 支持的提取操作
var supportedOperations = map[string]bool{
	"content": true, "contents": true,
	"text": true, "texts": true,
	"html": true, "attribute": true,
	"url": true, "urls": true,
	"image": true, "images": true,
	"number": true, "numbers": true,
	"json": true, "count": true, "exists": true,
	"body": true,
}

// ValidateFlags 验证命令行参数
func ValidateFlags(targetURL, mode, operation string, timeout int) error {
	if targetURL != "" {
		if err := ValidateURL(targetURL); err != nil {
			return err
		}
	}
	if mode != "http" && mode != "browser" {
		return fmt.Errorf("取数模式必须是http或browser, 得到: %s", mode)
	}
	if !supportedOperations[operation] {
		return fmt.Errorf("不支持的提取操作: %s", operation)
	}
	if timeout < 0 {
		return fmt.Errorf("超时不能为负数: %d", timeout)
	}
	return nil
}

// ValidateURL 验证URL格式
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL格式无效: %w", err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("URL缺少协议(http/https)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL协议必须是http或https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL缺少主机名")
	}
	return nil
}

// readURLsFromFile 从文件中读取URL列表, 跳过空行和#注释行
func readURLsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开URL文件失败: %w", err)
	}
	defer file.Close()

	urls := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ValidateURL(line); err != nil {
			log.Warn().Int("line", lineNum).Str("url", line).Err(err).Msg("跳过无效URL")
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取URL文件失败: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("URL文件中没有有效的URL")
	}

	log.Info().Int("count", len(urls)).Msg("从文件加载URL列表")
	return urls, nil
}
