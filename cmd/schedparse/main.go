// schedparse 离线解析课表文本，输出规范化的上课记录。
//
//	schedparse [-ocr] [-format json|yaml] [file]
//
// 未指定文件时从标准输入读取。
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/internal/parser"
	applogger "schedule-visualizer/backend/pkg/logger"
)

func main() {
	ocr := flag.Bool("ocr", false, "按 OCR 识别文本解析")
	format := flag.String("format", "json", "输出格式：json | yaml")
	logLevel := flag.String("log-level", "warn", "日志级别")
	flag.Parse()

	logger, err := applogger.NewLogger(&config.LogConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	text, err := readInput(flag.Arg(0))
	if err != nil {
		logger.Fatal("读取输入失败", zap.Error(err))
	}

	var res parser.Result
	if *ocr {
		res = parser.ParseRecognized(text)
	} else {
		res = parser.Parse(text)
	}
	logger.Info("解析完成",
		zap.String("format", string(res.Format)),
		zap.Int("count", len(res.Sessions)),
		zap.Bool("fallback", res.UsedFallback))

	if err := write(os.Stdout, res, *format); err != nil {
		logger.Fatal("输出失败", zap.Error(err))
	}
	if len(res.Sessions) == 0 {
		os.Exit(2)
	}
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func write(w io.Writer, res parser.Result, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(res)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("未知输出格式: %s", format)
	}
}
