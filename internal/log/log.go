// Copyright 2024 bgcode Authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.
// Package log wraps github.com/sirupsen/logrus the way the teacher's
// internal/log package does: a single package-level logger plus
// module-scoped helpers, rather than a logger instance threaded through
// every call site.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger every component module-scopes its
// entries from.
var Log = logrus.New()

func init() {
	Log.Formatter = &logrus.TextFormatter{}
}

// SetLevel sets the minimum level Log emits.
func SetLevel(level logrus.Level) { Log.SetLevel(level) }

// SetOutput redirects where Log writes entries.
func SetOutput(out io.Writer) { Log.SetOutput(out) }

// SetFormatter overrides Log's formatter (e.g. logrus.JSONFormatter for
// machine-readable CLI output).
func SetFormatter(formatter logrus.Formatter) { Log.SetFormatter(formatter) }

// ModuleLogger returns an entry carrying a stable "module" field, the way
// the teacher's internal/log tags entries with the calling package's
// short name. Components log through the entry rather than Log directly
// so every line is attributable to a component ("bgcode", "reader",
// "conf", "cmd/bgcode") without needing a module stack.
func ModuleLogger(name string) *logrus.Entry {
	return Log.WithField("module", name)
}
