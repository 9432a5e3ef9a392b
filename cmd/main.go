package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"siteblock/adblock"
	"siteblock/builder"
	"siteblock/config"
	"siteblock/geosite"
	"siteblock/logger"
	"siteblock/metrics"
	"siteblock/source"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 定义命令行参数
	configPath := flag.String("c", "siteblock.yaml", "配置文件路径")
	workDir := flag.String("w", "", "工作目录")
	input := flag.String("i", "", "关键词列表文件（覆盖配置）")
	output := flag.String("o", "", "输出文件（覆盖配置）")
	dialect := flag.String("dialect", "", "输出格式 plain/rules（覆盖配置）")
	check := flag.String("check", "", "检查域名是否被已生成的列表拦截")
	save := flag.Bool("save", false, "将合并命令行参数后的配置写回配置文件")
	verbose := flag.Bool("v", false, "详细输出")
	help := flag.Bool("h", false, "显示帮助信息")

	flag.Parse()

	if *help {
		printHelp()
		return 0
	}

	if *workDir != "" {
		if err := os.Chdir(*workDir); err != nil {
			fmt.Fprintf(os.Stderr, "错误：无法切换到工作目录：%v\n", err)
			return 1
		}
	}

	// 加载配置（不存在时自动创建默认配置）
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		return 1
	}

	// 命令行参数优先于配置文件
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *dialect != "" {
		cfg.Dialect = *dialect
	}
	if err := cfg.Validate(); err != nil {
		logger.Errorf("Invalid config: %v", err)
		return 1
	}

	if *save {
		if err := config.SaveConfig(*configPath, cfg); err != nil {
			logger.Errorf("Failed to save config: %v", err)
			return 1
		}
		logger.Infof("Config saved to %s", *configPath)
	}

	logger.SetLevel(cfg.LogLevel)
	if *verbose {
		logger.SetLevel("debug")
	}

	if *check != "" {
		return runCheck(cfg, *check)
	}
	return runBuild(cfg)
}

func runBuild(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := source.NewFetcher(cfg)
	if err != nil {
		logger.Errorf("Failed to create fetcher: %v", err)
		return 1
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warnf("Failed to save fetch cache: %v", err)
		}
	}()

	b, err := builder.New(cfg, fetcher, builder.WithMetrics(metrics.New()))
	if err != nil {
		logger.Errorf("Failed to create builder: %v", err)
		return 1
	}

	report, err := b.Run(ctx)
	switch {
	case errors.Is(err, geosite.ErrTargetsNotFound):
		logger.Errorf("Error: %s not found.", cfg.Input)
		return 1
	case errors.Is(err, builder.ErrNoTargets):
		logger.Infof("No target sites found in %s.", cfg.Input)
		return 0
	case err != nil:
		logger.Errorf("Build failed: %v", err)
		return 1
	}

	logger.Infof("Success! Blocklist saved to %s", report.Output)
	logger.Infof("Total unique entries: %d (%d keywords, %d failed, %d lines read) in %s",
		report.Tokens, len(report.Keywords), len(report.Failed), report.Lines, report.Duration)
	for _, reason := range geosite.SkipReasons {
		if n := report.Skipped[reason]; n > 0 {
			logger.Debugf("skipped %s: %d", reason, n)
		}
	}
	return 0
}

func runCheck(cfg *config.Config, domain string) int {
	d, err := geosite.ParseDialect(cfg.Dialect)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	checker, err := adblock.LoadFile(cfg.Output, d)
	if err != nil {
		logger.Errorf("Failed to load %s: %v", cfg.Output, err)
		return 1
	}

	res, err := checker.Check(domain)
	if err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	fmt.Println(res)
	return 0
}

func printHelp() {
	fmt.Print(`siteblock - 根据 v2fly/domain-list-community 生成 AdGuard Home 黑名单

使用方法：
  siteblock [选项]

选项：
  -c <路径>         配置文件路径（默认：siteblock.yaml，不存在时自动创建）
  -w <路径>         工作目录（默认：当前目录）
  -i <路径>         关键词列表文件，每行一个（默认：target_sites.txt）
  -o <路径>         输出文件（默认：adguardhome_blocklist.txt）
  -dialect <格式>   plain 纯域名列表 / rules AdBlock 规则列表
  -check <域名>     检查域名是否被已生成的列表拦截
  -save             将合并命令行参数后的配置写回配置文件
  -v                详细输出
  -h                显示此帮助信息

示例：
  # 生成纯域名列表
  siteblock

  # 生成 ||domain^ 规则列表
  siteblock -dialect rules -o blocklist.txt

  # 以后默认输出规则列表
  siteblock -dialect rules -save

  # 验证生成结果
  siteblock -dialect rules -o blocklist.txt -check www.tiktok.com
`)
}
