package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	// Everforest-ish palette, muted so experiment output stays the focus
	colorTime      = "\x1b[38;5;107m"
	colorComponent = "\x1b[38;5;208m"
	colorKey       = "\x1b[38;5;65m"
	colorNumber    = "\x1b[38;5;108m"
	colorWarn      = "\x1b[38;5;179m"
	colorWarnBg    = "\x1b[48;5;58m"
	colorErr       = "\x1b[38;5;167m"
	colorErrBg     = "\x1b[48;5;52m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder
// Format: "13:04:35  WARN  runner  Cannot write classifier file  fold=2 path=…"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for With() field accumulation
	context         []zapcore.Field
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	ctx := make([]zapcore.Field, len(enc.context))
	copy(ctx, enc.context)
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		context: ctx,
	}
}

// AddString etc. are routed through the embedded encoder; With() fields are
// captured here so they can be rendered in the compact form.
func (enc *minimalEncoder) AddString(key, value string) {
	enc.context = append(enc.context, zap.String(key, value))
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.context = append(enc.context, zap.Int64(key, value))
}

func (enc *minimalEncoder) AddInt(key string, value int) {
	enc.context = append(enc.context, zap.Int(key, value))
}

func (enc *minimalEncoder) AddFloat64(key string, value float64) {
	enc.context = append(enc.context, zap.Float64(key, value))
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.context = append(enc.context, zap.Bool(key, value))
}

func (enc *minimalEncoder) AddReflected(key string, value interface{}) error {
	enc.context = append(enc.context, zap.Any(key, value))
	return nil
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for non-info entries
	if lvl := levelColorString(ent.Level); lvl != "" {
		final.AppendString("  ")
		final.AppendString(lvl)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	all := append(append([]zapcore.Field{}, enc.context...), fields...)
	if len(all) > 0 {
		final.AppendString("  ")
		final.AppendString(formatFields(all))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for non-info levels
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return colorKey + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	default:
		return colorBold + colorErrBg + colorErr + level.CapitalString() + colorReset
	}
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	// Float64Type stores its bits in Integer; render through a throwaway map encoder
	enc := zapcore.NewMapObjectEncoder()
	field.AddTo(enc)
	if v, ok := enc.Fields[field.Key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// formatFields renders key=value pairs with numbers highlighted
func formatFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		val := getFieldValue(field)
		if val == "" {
			continue
		}
		color := ""
		if isNumeric(field.Type) {
			color = colorNumber
		}
		parts = append(parts, colorKey+field.Key+"="+colorReset+color+val+colorReset)
	}
	return strings.Join(parts, " ")
}

func isNumeric(t zapcore.FieldType) bool {
	switch t {
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type,
		zapcore.Float64Type, zapcore.Float32Type:
		return true
	}
	return false
}
