package cronclock

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"immo-parser-service/internal/core/port"
)

// Cron - CronPort поверх robfig/cron: стандартные выражения и дескрипторы "@every 5m"
type Cron struct {
	cron *cron.Cron
}

func NewCron(logger port.LoggerPort) *Cron {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	bridge := cronLogger{logger: logger.WithFields(port.Fields{"component": "cron"})}
	return &Cron{
		cron: cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(bridge)), cron.WithLogger(bridge)),
	}
}

func (c *Cron) AddFunc(spec string, cmd func()) error {
	if _, err := c.cron.AddFunc(spec, cmd); err != nil {
		return fmt.Errorf("cron: invalid schedule %q: %w", spec, err)
	}
	return nil
}

func (c *Cron) Start() { c.cron.Start() }

// Stop не ждет завершения уже запущенных задач
func (c *Cron) Stop() { c.cron.Stop() }

// Entries - число зарегистрированных расписаний
func (c *Cron) Entries() int { return len(c.cron.Entries()) }

// cronLogger адаптирует LoggerPort к cron.Logger
type cronLogger struct {
	logger port.LoggerPort
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, pairs(keysAndValues))
}

func pairs(kv []interface{}) port.Fields {
	fields := make(port.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return fields
}
