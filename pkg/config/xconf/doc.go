// Package xconf 提供基于 koanf 的配置加载。
//
// 支持 YAML 与 JSON，既可以从文件加载（[New]），也可以从字节加载
// （[NewFromBytes]，适用于 K8s ConfigMap 挂载或测试）。
//
//	cfg, err := xconf.New("xttl.yaml")
//	if err != nil {
//		return err
//	}
//	var cacheCfg xttl.Config
//	if err := cfg.Unmarshal("cache", &cacheCfg); err != nil {
//		return err
//	}
//
// Duration 字段可直接写成 "30s"、"1m" 等字符串。
package xconf
