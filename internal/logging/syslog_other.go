//go:build windows || plan9

package logging

import "errors"

func dialSyslog(string) (SyslogWriter, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
