package logger

import "go.uber.org/zap"

var base *zap.Logger

// Init настраивает глобальный логгер. В dev режиме — человекочитаемый вывод.
func Init(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	base = l
	return nil
}

func L() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}

func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
