package main

import (
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xttl/pkg/config/xconf"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

// configSection 是配置文件中缓存配置所在的路径。
const configSection = "cache"

// loadCacheConfig 合并配置文件与命令行参数，命令行显式设置的参数优先。
func loadCacheConfig(cmd *cli.Command) (xttl.Config, error) {
	cfg := xttl.Config{
		TTL:           cmd.Duration("ttl"),
		SweepInterval: cmd.Duration("sweep-interval"),
		Capacity:      int(cmd.Int("capacity")),
	}

	if path := cmd.String("config"); path != "" {
		fromFile, err := readConfigFile(path)
		if err != nil {
			return xttl.Config{}, err
		}
		if fromFile.TTL > 0 && !cmd.IsSet("ttl") {
			cfg.TTL = fromFile.TTL
		}
		if fromFile.SweepInterval > 0 && !cmd.IsSet("sweep-interval") {
			cfg.SweepInterval = fromFile.SweepInterval
		}
		if fromFile.Capacity != 0 && !cmd.IsSet("capacity") {
			cfg.Capacity = fromFile.Capacity
		}
	}
	return cfg, nil
}

// readConfigFile 读取配置文件中的 cache 段，时长字段使用 "30s" 形式的字符串。
func readConfigFile(path string) (xttl.Config, error) {
	conf, err := xconf.New(path)
	if err != nil {
		return xttl.Config{}, &usageError{msg: "load config file", err: err}
	}

	var cfg xttl.Config
	if err := conf.Unmarshal(configSection, &cfg); err != nil {
		return xttl.Config{}, &usageError{msg: "parse config section " + configSection, err: err}
	}
	return cfg, nil
}
