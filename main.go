package main

import (
	"context"
	"encoding/base64"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/fuzzysim/entity/car"
	"github.com/tsinghua-fib-lab/fuzzysim/output"
	"github.com/tsinghua-fib-lab/fuzzysim/task"
	"github.com/tsinghua-fib-lab/fuzzysim/utils/config"
	"gopkg.in/yaml.v2"
)

var (
	// 模拟任务名，默认作为输出的集合名
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// Prometheus监控地址，设置为空则不提供
	metricsAddr = flag.String("metrics", "", "address to expose prometheus metrics (empty means disabled), e.g. 127.0.0.1:8080")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "fuzzysim")
)

func runMonitor(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Infof("serving metrics at %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("failed to serve metrics: %v", err)
	}
}

// newRecorder 配置了数据库地址时写入MongoDB，否则保存在内存中
func newRecorder(c config.Output) output.Recorder {
	if c.URI == "" {
		log.Warn("output.uri is empty, records are kept in memory only")
		return output.NewMemoryRecorder()
	}
	if c.Col == "" {
		c.Col = *job
	}
	r, err := output.NewMongoRecorder(context.Background(), c)
	if err != nil {
		log.Panicf("failed to connect output database: %v", err)
	}
	return r
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)

	doc, err := car.LoadRuleBase(c.Fuzzy.RuleBase)
	if err != nil {
		log.Panicf("rule base load err: %v", err)
	}
	t, err := task.NewContext(*job, c, doc, newRecorder(c.Output))
	if err != nil {
		log.Panicf("failed to create task: %v", err)
	}

	if *metricsAddr != "" {
		go runMonitor(*metricsAddr)
	}
	// 收到中断信号时在当前步结束后停止，保证输出完整关闭
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		log.Warnf("received %v, stopping", s)
		t.Stop()
	}()

	t.Run()
}
