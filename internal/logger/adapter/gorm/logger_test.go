package gorm_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"

	adapter "github.com/anindta/task-management-project/internal/logger/adapter/gorm"
)

func newBufferLogger() (*bytes.Buffer, *zerolog.Logger) {
	var buf bytes.Buffer

	zl := zerolog.New(&buf).Level(zerolog.TraceLevel)

	return &buf, &zl
}

func TestTrace(t *testing.T) {
	sqlFunc := func() (string, int64) { return "SELECT 1", 1 }

	tests := []struct {
		name     string
		level    gormlogger.LogLevel
		begin    time.Time
		err      error
		contains string
	}{
		{
			name:  "silent writes nothing",
			level: gormlogger.Silent,
			begin: time.Now(),
			err:   errors.New("boom"),
		},
		{
			name:     "error is logged",
			level:    gormlogger.Error,
			begin:    time.Now(),
			err:      errors.New("boom"),
			contains: "query failed",
		},
		{
			name:  "record not found is not an error",
			level: gormlogger.Error,
			begin: time.Now(),
			err:   gormlogger.ErrRecordNotFound,
		},
		{
			name:     "slow query is a warning",
			level:    gormlogger.Warn,
			begin:    time.Now().Add(-time.Second),
			contains: "slow query",
		},
		{
			name:     "info traces every query",
			level:    gormlogger.Info,
			begin:    time.Now(),
			contains: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, zl := newBufferLogger()
			l := adapter.New(zl, tt.level)

			l.Trace(context.Background(), tt.begin, sqlFunc, tt.err)

			if tt.contains == "" {
				assert.Empty(t, buf.String())
				return
			}

			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func TestLogModeReturnsCopy(t *testing.T) {
	buf, zl := newBufferLogger()
	l := adapter.New(zl, gormlogger.Silent)

	loud := l.LogMode(gormlogger.Info)
	loud.Info(context.Background(), "hello %s", "gorm")
	l.Info(context.Background(), "not shown")

	assert.Contains(t, buf.String(), "hello gorm")
	assert.NotContains(t, buf.String(), "not shown")
}
