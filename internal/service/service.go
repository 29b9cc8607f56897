package service

import (
	"context"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/models"
	"vacuum_bridge/internal/repository"
)

type Authorization interface {
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (string, error)
	Enabled() bool
}

// Fleet exposes manual control and the discovered device list.
type Fleet interface {
	Apply(ctx context.Context, p ApplyParams) ([]string, error)
	ListVacuums(ctx context.Context, probe bool) []models.VacuumInfo
}

// Watcher is the alarm polling loop.
// Stop via context cancellation in main() for graceful shutdown.
type Watcher interface {
	Run(ctx context.Context)
	Status() models.WatcherStatus
}

// Monitoring tracks in-flight cleaning jobs.
type Monitoring interface {
	Active() int
	Shutdown()
}

type Cooldowns interface {
	Snapshot() []models.CooldownEntry
}

// EventLog exposes the fleet journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.FleetEvent, error)
}

// Simulation controls the in-process vendor simulator; nil when the
// service talks to real vendor adapters.
type Simulation interface {
	SetAlarmState(state models.AlarmState) error
	ExpireSessions()
}

// Journal is where components record what they did.
type Journal interface {
	Record(ctx context.Context, e models.FleetEvent)
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, models.FleetEvent) {}

// Service aggregates all sub-services.
type Service struct {
	Fleet
	Watcher
	Monitoring
	Cooldowns
	EventLog
	Authorization
	Simulation
}

// Deps are the collaborators NewService wires together.
type Deps struct {
	Repos      *repository.Repository
	Alarm      capability.AlarmClient
	Cloud      capability.CloudClient
	Dialer     capability.DeviceDialer
	Prober     Prober
	Simulation Simulation
	Config     config.Config
	Log        *logger.Logger
}

// NewService builds the cooldown store, directory, monitors, fleet and
// watcher from d.
func NewService(d Deps) *Service {
	cfg := d.Config

	eventLog := NewEventLogService(d.Repos.EventRepo, d.Log)
	cooldown := NewCooldownStore()
	directory := NewDirectoryService(
		d.Cloud,
		d.Dialer,
		capability.Credentials{Username: cfg.Xiaomi.Username, Password: cfg.Xiaomi.Password},
		cfg.Xiaomi.ModelFilter,
		d.Log,
	)
	monitors := NewMonitorService(cooldown, eventLog, cfg.Monitor.Interval, cfg.Monitor.MaxPolls, d.Log)
	fleet := NewFleetService(directory, cooldown, monitors, eventLog, d.Prober, cfg.Fleet.Cooldown, d.Log)
	watcher := NewWatcherService(
		d.Alarm,
		capability.Credentials{Username: cfg.Alarm.Username, Password: cfg.Alarm.Password},
		cfg.Alarm.Installation,
		fleet,
		eventLog,
		cfg.Alarm.PollInterval,
		d.Log,
	)

	return &Service{
		Fleet:         fleet,
		Watcher:       watcher,
		Monitoring:    monitors,
		Cooldowns:     cooldown,
		EventLog:      eventLog,
		Authorization: NewAuthService(cfg.Auth),
		Simulation:    d.Simulation,
	}
}
