package fuzzy

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "fuzzy")
