//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/padshell/internal/config"
	"github.com/eliteGoblin/padshell/internal/daemon"
	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/inventory"
	"github.com/eliteGoblin/padshell/internal/policy"
	"github.com/eliteGoblin/padshell/internal/usecase"
	"github.com/eliteGoblin/padshell/test/fixtures"
)

const (
	shellHandle = domain.WindowHandle(0xBEEF)
	tick        = 16 * time.Millisecond
)

var restoreCombo = []domain.Button{
	domain.ButtonLeftShoulder,
	domain.ButtonRightShoulder,
	domain.ButtonDPadLeft,
}

// desktop wires the real inventory, activator and dispatcher to fakes and
// drives them with a manual clock.
type desktop struct {
	windows    *fixtures.FakeWindowSystem
	processes  *fixtures.FakeProcessManager
	presenter  *fixtures.FakePresenter
	tray       *fixtures.FakeTray
	screen     *fixtures.FakeScreen
	audio      *fixtures.FakeAudioBackend
	runner     *fixtures.QueuedRunner
	dispatcher *usecase.Dispatcher
	now        time.Time
}

func newDesktop(apps ...string) *desktop {
	d := &desktop{
		windows:   fixtures.NewFakeWindowSystem(),
		processes: fixtures.NewFakeProcessManager(),
		presenter: fixtures.NewFakePresenter(shellHandle),
		tray:      fixtures.NewFakeTray(),
		screen:    fixtures.NewFakeScreen(),
		audio:     fixtures.NewFakeAudioBackend(),
		runner:    &fixtures.QueuedRunner{},
		now:       time.Unix(5000, 0),
	}
	d.windows.AddHiddenWindow(shellHandle)
	for i, app := range apps {
		d.open(domain.WindowHandle(i+1), 100+i, app)
	}

	logger := zap.NewNop()
	inv := inventory.New(d.windows, d.processes, policy.NewRegistry("padshell"), logger)
	activator := usecase.NewActivator(d.windows, d.processes, d.presenter, usecase.DefaultActivatorConfig(), logger)
	d.dispatcher = usecase.NewDispatcher(usecase.DefaultDispatcherConfig(), inv, activator,
		d.presenter, d.tray, d.screen, d.screen, d.screen, d.audio, d.runner, logger)
	d.dispatcher.RefreshInventory()
	return d
}

func (d *desktop) open(h domain.WindowHandle, pid int, app string) {
	d.processes.SetProcess(pid, app)
	d.windows.AddWindow(domain.WindowInfo{Handle: h, PID: pid, Title: app + " window"})
}

func (d *desktop) advance(dt time.Duration, buttons ...domain.Button) {
	d.now = d.now.Add(dt)
	d.dispatcher.Tick(domain.GamepadState{Buttons: domain.Of(buttons...), Connected: true}, d.now)
}

func (d *desktop) press(buttons ...domain.Button) { d.advance(tick, buttons...) }
func (d *desktop) idle()                          { d.advance(tick) }

func (d *desktop) snapshot() domain.InventorySnapshot {
	snap, ok := d.screen.LastSnapshot()
	Expect(ok).To(BeTrue(), "nothing rendered yet")
	return snap
}

func (d *desktop) countCalls(op string) int {
	n := 0
	for _, c := range d.windows.Calls() {
		if len(c) >= len(op) && c[:len(op)] == op {
			n++
		}
	}
	return n
}

var _ = Describe("Controller shell", func() {
	Describe("window inventory", func() {
		Context("when no window passes the filter", func() {
			It("should render an empty list and ignore activation", func() {
				d := newDesktop()
				d.open(1, 50, "TextInputHost")
				d.dispatcher.RefreshInventory()

				snap := d.snapshot()
				Expect(snap.Entries).To(BeEmpty())
				Expect(snap.Selected).To(Equal(-1))

				d.windows.ResetCalls()
				d.press(domain.ButtonA)
				Expect(d.windows.Calls()).To(BeEmpty())
				Expect(d.dispatcher.Mode()).To(Equal(domain.ModeVisible))
			})
		})

		Context("when the selected last window closes", func() {
			It("should clamp the selection into the shorter list", func() {
				d := newDesktop("a", "b", "c", "d", "e")
				for i := 0; i < 4; i++ {
					d.press(domain.ButtonDPadDown)
					d.advance(200 * time.Millisecond)
				}
				Expect(d.snapshot().Selected).To(Equal(4))

				d.windows.RemoveWindow(5)
				d.dispatcher.RefreshInventory()

				snap := d.snapshot()
				Expect(snap.Entries).To(HaveLen(4))
				Expect(snap.Selected).To(Equal(3))
			})
		})

		Context("when nothing changed between refreshes", func() {
			It("should not render again", func() {
				d := newDesktop("a", "b")
				before := len(d.screen.Snapshots())

				d.dispatcher.RefreshInventory()
				d.dispatcher.RefreshInventory()

				Expect(d.screen.Snapshots()).To(HaveLen(before))
			})
		})
	})

	Describe("activation", func() {
		Context("when A is pressed twice 10ms apart", func() {
			It("should activate once and treat the second press as hidden input", func() {
				d := newDesktop("a", "b")
				d.windows.ResetCalls()

				d.press(domain.ButtonA)
				d.idle()
				d.advance(10*time.Millisecond, domain.ButtonA)

				Expect(d.countCalls("foreground")).To(Equal(1))
				Expect(d.dispatcher.Mode()).To(Equal(domain.ModeHidden))
				Expect(d.tray.Visible()).To(BeTrue())
			})
		})

		Context("when the window vanished after selection", func() {
			It("should refresh silently and stay visible", func() {
				d := newDesktop("a", "b")
				d.windows.RemoveWindow(1)

				d.press(domain.ButtonA)

				Expect(d.dispatcher.Mode()).To(Equal(domain.ModeVisible))
				Expect(d.snapshot().Entries).To(HaveLen(1))
				Expect(d.screen.Notifications()).To(BeEmpty())
			})
		})

		Context("when a step of the arbitration fails every time", func() {
			It("should keep the shell operable", func() {
				d := newDesktop("a", "b")
				d.windows.FailOn("foreground", errors.New("refused"))

				for i := 0; i < 3; i++ {
					d.press(domain.ButtonA)
					Expect(d.dispatcher.Mode()).To(Equal(domain.ModeHidden))
					d.idle()
					d.press(restoreCombo...)
					Expect(d.dispatcher.Mode()).To(Equal(domain.ModeVisible))
					d.idle()
				}
			})
		})
	})

	Describe("restore combo while hidden", func() {
		var d *desktop

		BeforeEach(func() {
			d = newDesktop("a")
			d.press(domain.ButtonB)
			d.idle()
			Expect(d.dispatcher.Mode()).To(Equal(domain.ModeHidden))
		})

		DescribeTable("other combinations leave the shell hidden",
			func(buttons ...domain.Button) {
				d.press(buttons...)
				d.idle()
				Expect(d.dispatcher.Mode()).To(Equal(domain.ModeHidden))
				Expect(d.presenter.Visible()).To(BeFalse())
			},
			Entry("A", domain.ButtonA),
			Entry("two of three", domain.ButtonLeftShoulder, domain.ButtonRightShoulder),
			Entry("combo plus X", domain.ButtonLeftShoulder, domain.ButtonRightShoulder, domain.ButtonDPadLeft, domain.ButtonX),
			Entry("start and back", domain.ButtonStart, domain.ButtonBack),
		)

		It("should restore on the exact combo", func() {
			d.press(restoreCombo...)

			Expect(d.dispatcher.Mode()).To(Equal(domain.ModeVisible))
			Expect(d.presenter.Visible()).To(BeTrue())
			Expect(d.tray.Visible()).To(BeFalse())
		})
	})

	Describe("audio popup", func() {
		It("should suppress list navigation while open", func() {
			d := newDesktop("a", "b", "c")
			d.press(domain.ButtonDPadRight)
			d.runner.Flush()
			Expect(d.dispatcher.Mode()).To(Equal(domain.ModeAudioPopupOpen))

			d.advance(300 * time.Millisecond)
			d.press(domain.ButtonDPadDown)

			Expect(d.snapshot().Selected).To(Equal(0))
			view, _ := d.screen.LastPopup()
			Expect(view.Selected).To(Equal(1))
		})

		It("should report a failed switch and offer a retry", func() {
			d := newDesktop("a")
			d.audio.SetErr = fmt.Errorf("%w: device busy", domain.ErrAudioOperation)

			d.press(domain.ButtonDPadRight)
			d.runner.Flush()
			d.advance(300 * time.Millisecond)
			d.press(domain.ButtonDPadDown)
			d.idle()
			d.advance(200*time.Millisecond, domain.ButtonA)
			d.runner.Flush()

			Expect(d.screen.Notifications()).To(ContainElement("Could not switch to Headphones"))
			Expect(d.dispatcher.Mode()).To(Equal(domain.ModeAudioPopupOpen))

			d.audio.SetErr = nil
			d.runner.Flush()
			d.advance(300 * time.Millisecond)
			d.press(domain.ButtonA)
			d.runner.Flush()

			Expect(d.audio.Applied()).To(Equal([]string{"out-2"}))
			Expect(d.dispatcher.Mode()).To(Equal(domain.ModeVisible))
		})
	})

	Describe("shell loop with a watched config file", func() {
		var (
			tmpDir  string
			cfgPath string
			cancel  context.CancelFunc
			done    chan error
			screen  *fixtures.FakeScreen
		)

		BeforeEach(func() {
			var err error
			tmpDir, err = os.MkdirTemp("", "padshell-integration-*")
			Expect(err).NotTo(HaveOccurred())
			cfgPath = filepath.Join(tmpDir, "config.yaml")
			Expect(config.Default().Write(cfgPath)).To(Succeed())

			windows := fixtures.NewFakeWindowSystem()
			processes := fixtures.NewFakeProcessManager()
			for i, app := range []string{"code", "spotify", "slack"} {
				processes.SetProcess(100+i, app)
				windows.AddWindow(domain.WindowInfo{Handle: domain.WindowHandle(i + 1), PID: 100 + i, Title: app})
			}
			screen = fixtures.NewFakeScreen()
			tray := fixtures.NewFakeTray()
			presenter := fixtures.NewFakePresenter(shellHandle)

			cfg, err := config.Load(cfgPath)
			Expect(err).NotTo(HaveOccurred())
			logger := zap.NewNop()
			timeline := daemon.NewTimeline(4)
			inv := inventory.New(windows, processes, policy.FromConfig(cfg, "padshell"), logger)
			activator := usecase.NewActivator(windows, processes, presenter, usecase.DefaultActivatorConfig(), logger)
			shellCfg, dispatcherCfg := daemon.ConfigsFrom(cfg)
			shellCfg.InventoryRefresh = 10 * time.Millisecond
			dispatcher := usecase.NewDispatcher(dispatcherCfg, inv, activator, presenter, tray,
				screen, screen, screen, fixtures.NewFakeAudioBackend(), timeline, logger)
			shell := daemon.NewShell(shellCfg, fixtures.NewFakeGamepad(), dispatcher, inv, tray, timeline, "padshell", logger)

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			updates, err := config.Watch(ctx, cfgPath, logger)
			Expect(err).NotTo(HaveOccurred())

			done = make(chan error, 1)
			go func() { done <- shell.Run(ctx, updates) }()
		})

		AfterEach(func() {
			cancel()
			Eventually(done, 2*time.Second).Should(Receive())
			os.RemoveAll(tmpDir)
		})

		It("should apply a new alias and denylist without a restart", func() {
			Eventually(func() int {
				snap, _ := screen.LastSnapshot()
				return snap.Len()
			}, 2*time.Second, 10*time.Millisecond).Should(Equal(3))

			cfg := config.Default()
			cfg.Denylist = append(cfg.Denylist, "slack")
			cfg.Aliases["code"] = "VS Code"
			Expect(cfg.Write(cfgPath)).To(Succeed())

			Eventually(func() []string {
				snap, _ := screen.LastSnapshot()
				var names []string
				for _, e := range snap.Entries {
					names = append(names, e.DisplayName)
				}
				return names
			}, 3*time.Second, 10*time.Millisecond).Should(Equal([]string{"VS Code", "Spotify"}))
		})
	})
})
