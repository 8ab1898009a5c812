//go:build !windows && !plan9

package logging

import "log/syslog"

func dialSyslog(tag string) (SyslogWriter, error) {
	return syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
}
