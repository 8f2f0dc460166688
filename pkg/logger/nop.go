package logger

// Nop returns a logger that discards everything. Packages fall back to it
// when no logger is configured.
func Nop() Logger { return nop{} }

type nop struct{}

func (n nop) WithField(string, any) Logger     { return n }
func (n nop) WithFields(map[string]any) Logger { return n }
func (n nop) WithError(error) Logger           { return n }

func (nop) Debug(...any) {}
func (nop) Info(...any)  {}
func (nop) Warn(...any)  {}
func (nop) Error(...any) {}
func (nop) Fatal(...any) {}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}
func (nop) Fatalf(string, ...any) {}

func (nop) SetLevel(Level)  {}
func (nop) GetLevel() Level { return Disabled }
