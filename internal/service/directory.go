package service

import (
	"context"
	"strings"

	"vacuum_bridge/internal/capability"
	"vacuum_bridge/internal/logger"
)

const unknownIP = "unknown"

// Vacuum is one discovered device. Control is nil when the cloud gave no
// token for it. A Vacuum is only valid for the operation that discovered it.
type Vacuum struct {
	IP       string
	Model    string
	DeviceID string
	Control  capability.DeviceController
}

// Label is the "ip (model)" prefix used in outcome lines.
func (v Vacuum) Label() string {
	return v.IP + " (" + v.Model + ")"
}

// DirectoryService lists controllable vacuums from the device cloud.
type DirectoryService struct {
	cloud       capability.CloudClient
	dialer      capability.DeviceDialer
	creds       capability.Credentials
	modelFilter string
	log         *logger.Logger
}

func NewDirectoryService(cloud capability.CloudClient, dialer capability.DeviceDialer, creds capability.Credentials, modelFilter string, log *logger.Logger) *DirectoryService {
	return &DirectoryService{
		cloud:       cloud,
		dialer:      dialer,
		creds:       creds,
		modelFilter: modelFilter,
		log:         log,
	}
}

// Discover logs in, lists the inventory and keeps the vacuum family.
// Every failure degrades to an empty (or shorter) list.
func (d *DirectoryService) Discover(ctx context.Context) []Vacuum {
	if d.creds.Empty() {
		d.log.Errorw("directory_missing_credentials")
		return nil
	}

	sess, err := d.cloud.Login(ctx, d.creds)
	if err != nil {
		d.log.Errorw("directory_cloud_login_failed", "err", err)
		return nil
	}

	devices, err := d.cloud.ListDevices(ctx, sess)
	if err != nil {
		d.log.Errorw("directory_list_failed", "err", err)
		return nil
	}

	vacuums := make([]Vacuum, 0, len(devices))
	for _, dev := range devices {
		if !strings.Contains(dev.Model, d.modelFilter) {
			continue
		}
		if dev.ID == "" {
			d.log.Warnw("directory_device_without_id", "model", dev.Model)
			continue
		}
		v := Vacuum{
			IP:       dev.LocalIP,
			Model:    dev.Model,
			DeviceID: dev.ID,
		}
		if v.IP == "" {
			v.IP = unknownIP
		}
		if dev.Token != "" {
			ctrl, err := d.dialer.Dial(v.IP, dev.Token)
			if err != nil {
				d.log.Warnw("directory_dial_failed", "device_id", v.DeviceID, "ip", v.IP, "err", err)
			} else {
				v.Control = ctrl
			}
		}
		d.log.Infow("directory_found_vacuum", "ip", v.IP, "model", v.Model, "device_id", v.DeviceID, "controllable", v.Control != nil)
		vacuums = append(vacuums, v)
	}

	d.log.Infow("directory_discovered", "count", len(vacuums))
	return vacuums
}
