package printing

import (
	"fmt"
	"sort"
	"sync"
)

// PrinterRegistry resolves printers by name. The first registered printer is
// the default unless SetDefault names another.
type PrinterRegistry struct {
	mu          sync.RWMutex
	printers    map[string]Printer
	defaultName string
}

// NewPrinterRegistry creates a new empty PrinterRegistry.
func NewPrinterRegistry() *PrinterRegistry {
	return &PrinterRegistry{
		printers: make(map[string]Printer),
	}
}

// Register adds a Printer to the registry.
// If a printer with the same name already exists, it will be replaced.
func (r *PrinterRegistry) Register(printer Printer) {
	if printer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printers[printer.Name()] = printer
	if r.defaultName == "" {
		r.defaultName = printer.Name()
	}
}

// SetDefault selects the printer used when a job names none
func (r *PrinterRegistry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.printers[name]; !ok {
		return NewRenderError(ErrCodePrinterUnknown, fmt.Sprintf("printer %q is not registered", name), nil)
	}
	r.defaultName = name
	return nil
}

// Get returns the named printer, or the default for an empty name.
func (r *PrinterRegistry) Get(name string) (Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultName
	}
	printer, ok := r.printers[name]
	if !ok {
		return nil, NewRenderError(ErrCodePrinterUnknown, fmt.Sprintf("printer %q is not registered", name), nil)
	}
	return printer, nil
}

// DefaultName returns the name of the default printer
func (r *PrinterRegistry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultName
}

// Names returns all registered printer names in sorted order.
func (r *PrinterRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.printers))
	for name := range r.printers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
