package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager builds and caches one logger per module name.
type Manager struct {
	mu      sync.RWMutex
	config  ManagerConfig
	loggers map[string]*CtxZapLogger
	writers []*lumberjack.Logger
}

var (
	globalMu      sync.RWMutex
	globalManager *Manager
)

// NewManager creates a manager with defaults applied.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		config:  cfg,
		loggers: make(map[string]*CtxZapLogger),
	}
}

// InitManager installs the global manager. Call once during startup.
func InitManager(cfg ManagerConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = NewManager(cfg)
}

// GetLogger returns the cached logger for a module, creating it on first use.
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	l, ok := m.loggers[moduleName]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[moduleName]; ok {
		return l
	}

	base := m.createLogger(moduleName)
	l = &CtxZapLogger{
		base:   base.With(zap.String("module", moduleName)),
		module: moduleName,
		config: &m.config,
	}
	m.loggers[moduleName] = l
	return l
}

// createLogger builds the underlying zap.Logger for one module.
func (m *Manager) createLogger(moduleName string) *zap.Logger {
	level := m.config.Level
	if override, ok := m.config.ModuleLevels[moduleName]; ok {
		level = override
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if m.config.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var syncers []zapcore.WriteSyncer
	if m.config.Output == "stdout" || m.config.Output == "both" {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if m.config.Output == "file" || m.config.Output == "both" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(m.config.Dir, moduleName+".log"),
			MaxSize:    m.config.MaxSizeMB,
			MaxBackups: m.config.MaxBackups,
			MaxAge:     m.config.MaxAgeDays,
			Compress:   m.config.Compress,
		}
		m.writers = append(m.writers, rotator)
		syncers = append(syncers, zapcore.AddSync(rotator))
	}
	if len(syncers) == 0 {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), ParseLevel(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// CloseAll flushes every logger and closes the rotated files.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*CtxZapLogger)
	m.writers = nil
}

// GetLogger returns a module logger from the global manager,
// installing a default manager if none was initialized.
func GetLogger(moduleName string) *CtxZapLogger {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m == nil {
		globalMu.Lock()
		if globalManager == nil {
			globalManager = NewManager(DefaultManagerConfig())
		}
		m = globalManager
		globalMu.Unlock()
	}
	return m.GetLogger(moduleName)
}

// CloseAll flushes the global manager.
func CloseAll() {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		m.CloseAll()
	}
}
