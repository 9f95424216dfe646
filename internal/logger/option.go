package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// WithFileOutput is an option that duplicates every entry accepted by the
// console core into w, JSON-encoded.
// It returns a zap.Option that tees the existing core with a file core sharing its level.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithFileOutput(w io.Writer) zap.Option {
	return zap.WrapCore(
		func(core zapcore.Core) zapcore.Core {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(w),
				core,
			)

			return zapcore.NewTee(core, fileCore)
		})
}
