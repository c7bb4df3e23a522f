package main

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/config/watch"
	"github.com/itohio/kvmswitch/pkg/events"
	"github.com/itohio/kvmswitch/pkg/scope"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configFlag  = pflag.StringP("config", "c", "config.yaml", "Configuration file path")
		mockFlag    = pflag.Bool("mock", false, "Use in-memory channels instead of serial ports")
		metricsFlag = pflag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9120)")
		lowerFlag   = pflag.String("lower", "", "Serial port override for the lower device")
		traceFlag   = pflag.Duration("trace", 10*time.Second, "Pixel history shown by the scope")
	)
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *lowerFlag != "" {
		cfg.Serial.Lower = *lowerFlag
	}

	application := app.NewWithID("com.itohio.kvmswitch")
	window := application.NewWindow("KVM Switch")
	window.Resize(fyne.NewSize(900, 600))
	window.CenterOnScreen()

	p := &panel{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
		bus:        events.New(),
		trace:      scope.NewTrace(traceSize(cfg, *traceFlag), nil),
	}

	p.scopeWidget = scope.New(*traceFlag)
	p.pixel = canvas.NewRectangle(theme.Color(theme.ColorNameBackground))
	p.pixel.SetMinSize(fyne.NewSize(48, 48))
	p.pixel.CornerRadius = 24

	if *metricsFlag != "" {
		srv, err := startMetrics(*metricsFlag, p)
		if err != nil {
			log.Fatalf("Failed to start metrics server: %v", err)
		}
		defer srv.Stop()
	}

	w := watch.New(*configFlag, 0)
	w.OnReload(p.reload)
	if err := w.Start(); err != nil {
		log.Printf("Config watcher disabled: %v", err)
	} else {
		p.watching = true
		defer w.Stop()
	}

	window.SetContent(container.NewBorder(
		createToolbar(p),
		createStatusBar(p),
		nil,
		container.NewVBox(container.NewCenter(p.pixel), createButtons(p)),
		p.scopeWidget,
	))
	p.subscribe()

	stop := make(chan struct{})
	go p.refreshLoop(stop)

	window.SetOnClosed(func() {
		close(stop)
		p.disconnect()
	})
	window.ShowAndRun()
}

// traceSize keeps enough pixel frames for window at the breathing step rate.
func traceSize(cfg *config.Config, window time.Duration) int {
	step := cfg.LED.BreathStep
	if step <= 0 {
		step = 10 * time.Millisecond
	}
	return int(window/step) + 1
}

// panel holds the desktop application state.
type panel struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	useMock    bool
	watching   bool // Config file changes are applied by the watcher
	bus        *events.Bus
	trace      *scope.Trace

	scopeWidget *scope.ScopeWidget
	pixel       *canvas.Rectangle
	connectBtn  *widget.Button
	injectBtn   *widget.Button
	targetLbl   *widget.Label
	mouseLbl    *widget.Label
	ledLbl      *widget.Label
	eventLbl    *widget.Label

	mu      sync.Mutex
	session *session // nil if not connected
}

// createToolbar creates the toolbar with the Connect, Settings and
// middle-click injection buttons.
func createToolbar(p *panel) fyne.CanvasObject {
	p.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(p)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(p)
	})

	// Only mock lower channels accept injected frames.
	p.injectBtn = widget.NewButtonWithIcon("Middle click", theme.MediaPlayIcon(), func() {
		p.injectMiddleClick()
	})
	p.injectBtn.Disable()

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(p.connectBtn, settingsBtn),
		container.NewHBox(p.injectBtn),
		nil,
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(p *panel) {
	if p.connected() {
		p.disconnect()
		return
	}
	if err := p.connect(); err != nil {
		dialog.ShowError(err, p.window)
	}
}

func (p *panel) connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// connect starts a session with the current configuration.
func (p *panel) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return nil
	}

	s, err := startSession(p.cfg, p.useMock, p.trace, p.bus, p.restart)
	if err != nil {
		return err
	}
	p.session = s
	if p.useMock {
		log.Printf("Connected to mock channels")
	} else {
		log.Printf("Connected to %s, %s, %s", p.cfg.Serial.Lower, p.cfg.Serial.UpperA, p.cfg.Serial.UpperB)
	}

	fyne.Do(func() {
		if p.useMock {
			p.injectBtn.Enable()
		}
		p.connectBtn.Importance = widget.HighImportance
		p.connectBtn.Refresh()
	})
	return nil
}

// disconnect gracefully stops the running session.
func (p *panel) disconnect() {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.mu.Unlock()

	if s == nil {
		return
	}
	s.stop()
	log.Printf("Disconnected")

	fyne.Do(func() {
		p.injectBtn.Disable()
		p.connectBtn.Importance = widget.MediumImportance
		p.connectBtn.Refresh()
	})
}

// restart rebuilds the core the way a reset brings the firmware back to
// its power-on state. It is called from the dispatcher and must not wait
// for it.
func (p *panel) restart() {
	go func() {
		p.disconnect()
		if err := p.connect(); err != nil {
			log.Printf("Restart failed: %v", err)
			fyne.Do(func() { dialog.ShowError(err, p.window) })
		}
	}()
}

// reload applies a configuration file change and restarts a running session.
func (p *panel) reload(cfg *config.Config) {
	log.Printf("Configuration reloaded from %s", p.configPath)
	wasConnected := p.connected()
	if wasConnected {
		p.disconnect()
	}

	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()

	if wasConnected {
		if err := p.connect(); err != nil {
			log.Printf("Reconnect after reload failed: %v", err)
		}
	}
}

// injectMiddleClick feeds one mouse-middle frame into the mock lower channel.
func (p *panel) injectMiddleClick() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return
	}
	if !s.injectMiddleClick() {
		log.Printf("Middle click dropped")
	}
}
