package rulebase

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "rulebase")
