package task

import "github.com/sirupsen/logrus"

// log 仿真任务的日志记录器
var log = logrus.WithField("module", "task")
