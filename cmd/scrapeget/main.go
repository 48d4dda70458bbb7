package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/scrapekit"
	"github.com/RecoveryAshes/scrapekit/config"
	"github.com/RecoveryAshes/scrapekit/fetch"
	"github.com/RecoveryAshes/scrapekit/logx"
	"github.com/RecoveryAshes/scrapekit/query"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	logLevel   string
	logDir     string
	noConsole  bool

	// 请求参数
	targetURL string
	urlFile   string
	mode      string
	headers   []string
	cookies   []string
	userAgent string
	timeout   int
	useProxy  bool

	// 提取参数
	operation string
	selectors []string
	attribute string

	// 批量处理参数
	batchDelay      int
	continueOnError bool
	outputFile      string
)

var rootCmd = &cobra.Command{
	Use:   "scrapeget",
	Short: "网页抓取与结构化提取工具",
	Long: `scrapeget - 基于scrapekit的网页抓取与结构化提取工具

支持:
  • HTTP与无头浏览器两种取数模式
  • CSS选择器与XPath混用的声明式提取
  • 内置限速、代理选路与浏览器进程复用
  • 批量URL处理与进度展示

示例:
  # 提取页面标题
  scrapeget -u https://example.com -p content -s h1

  # 收集页面全部链接
  scrapeget -u https://example.com -p urls -s a

  # 浏览器模式抓取动态页面
  scrapeget -u https://example.com -m browser -p texts -s ".item .title"

  # 批量处理URL列表
  scrapeget -f urls.txt -p urls -s a -o results.json

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logConfig := logx.DefaultConfig()
		logConfig.Console = !noConsole
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if logDir != "" {
			logConfig.LogDir = logDir
		}
		if err := logx.Init(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if targetURL == "" && urlFile == "" {
			return cmd.Help()
		}
		if err := ValidateFlags(targetURL, mode, operation, timeout); err != nil {
			return err
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		scraper := scrapekit.New(cfg)
		defer scraper.CloseAllBrowsers()

		// Ctrl+C优雅退出
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, err := buildRequestOptions()
		if err != nil {
			return err
		}

		if urlFile != "" {
			urls, err := readURLsFromFile(urlFile)
			if err != nil {
				return fmt.Errorf("读取URL文件失败: %w", err)
			}
			runner := &batchRunner{
				scraper:         scraper,
				mode:            mode,
				opts:            opts,
				delay:           time.Duration(batchDelay) * time.Second,
				continueOnError: continueOnError,
			}
			results, err := runner.Run(ctx, urls)
			if err != nil {
				return fmt.Errorf("批量抓取失败: %w", err)
			}
			return writeResults(results, outputFile)
		}

		result := fetchOne(ctx, scraper, mode, targetURL, opts)
		if result.Error != "" {
			return fmt.Errorf("抓取失败: %s", result.Error)
		}
		return writeResults([]urlResult{result}, outputFile)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scrapeget %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// buildRequestOptions 把命令行参数装配为请求选项
func buildRequestOptions() (fetch.RequestOptions, error) {
	opts := fetch.RequestOptions{UserAgent: userAgent}
	if timeout > 0 {
		opts.Timeout = time.Duration(timeout) * time.Second
	}
	if useProxy {
		v := true
		opts.Proxy = &v
	}

	if len(headers) > 0 {
		opts.Headers = make(map[string]string, len(headers))
		for _, h := range headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return opts, fmt.Errorf("头部格式无效(应为'Name: Value'): %s", h)
			}
			opts.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	if len(cookies) > 0 {
		opts.Cookies = make(map[string]string, len(cookies))
		for _, c := range cookies {
			name, value, ok := strings.Cut(c, "=")
			if !ok {
				return opts, fmt.Errorf("cookie格式无效(应为'name=value'): %s", c)
			}
			opts.Cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return opts, nil
}

// fetchOne 抓取单个URL并执行提取操作
func fetchOne(ctx context.Context, scraper *scrapekit.Scraper, mode, rawURL string, opts fetch.RequestOptions) urlResult {
	result := urlResult{URL: rawURL}

	var resp *fetch.Response
	var err error
	if mode == "browser" {
		resp, err = scraper.BrowserRequest(ctx, rawURL, opts)
	} else {
		resp, err = scraper.Get(ctx, rawURL, opts)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Status = resp.Status
	result.FinalURL = resp.FinalURL
	if !resp.OK {
		result.Error = fmt.Sprintf("响应状态%d %s", resp.Status, resp.StatusText)
		return result
	}

	if resp.Document == nil {
		// JSON或纯文本响应直接透传
		if resp.Data != nil {
			result.Value = resp.Data
		} else {
			result.Value = resp.Text()
		}
		return result
	}

	value, err := applyOperation(resp.Document, operation, selectors, attribute)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Value = value
	return result
}

// applyOperation 在查询上下文上执行指定的提取操作
func applyOperation(doc *query.Context, op string, selectors []string, attribute string) (any, error) {
	sel := query.Selector(selectors)
	opts := query.Options{Attribute: attribute}

	switch op {
	case "content":
		return doc.Content(sel, opts), nil
	case "contents":
		return doc.Contents(sel, opts), nil
	case "text":
		return doc.Text(sel, opts), nil
	case "texts":
		return doc.Texts(sel, opts), nil
	case "html":
		return doc.HTML(sel, opts), nil
	case "attribute":
		if attribute == "" {
			return nil, fmt.Errorf("attribute操作需要 --attribute 参数")
		}
		return doc.Attribute(sel, attribute, opts), nil
	case "url":
		return doc.URL(sel, opts), nil
	case "urls":
		return doc.URLs(sel, opts), nil
	case "image":
		return doc.Image(sel, opts), nil
	case "images":
		return doc.Images(sel, opts), nil
	case "number":
		return doc.Number(sel, opts), nil
	case "numbers":
		return doc.Numbers(sel, opts), nil
	case "json":
		return doc.JSON(sel, opts), nil
	case "count":
		return doc.Count(sel, opts), nil
	case "exists":
		return doc.Exists(sel, opts), nil
	case "body":
		return doc.HTML(nil), nil
	default:
		return nil, fmt.Errorf("不支持的提取操作: %s", op)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "日志目录")
	rootCmd.PersistentFlags().BoolVar(&noConsole, "no-console-log", false, "关闭控制台日志输出")

	// 请求参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "目标URL (必需,除非使用 --url-file)")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "http", "取数模式 (http|browser)")
	rootCmd.Flags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().StringSliceVar(&cookies, "cookie", []string{}, "自定义cookie,格式: 'name=value',可多次指定")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "覆盖User-Agent")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "请求超时(秒), 0表示使用配置值")
	rootCmd.Flags().BoolVar(&useProxy, "proxy", false, "强制本次请求走代理")

	// 提取参数
	rootCmd.Flags().StringVarP(&operation, "op", "p", "body", "提取操作 (content|contents|text|texts|html|attribute|url|urls|image|images|number|numbers|json|count|exists|body)")
	rootCmd.Flags().StringSliceVarP(&selectors, "selector", "s", []string{}, "CSS选择器或XPath(以/或(开头视为XPath),可多次指定")
	rootCmd.Flags().StringVarP(&attribute, "attribute", "a", "", "attribute操作读取的属性名")

	// 批量处理参数
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批量处理URL间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "结果输出文件(JSON), 缺省输出到标准输出")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("执行失败")
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
