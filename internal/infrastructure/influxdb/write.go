package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteThingProperty records one property sample from a mirrored live-state
// update. Non-blocking; the point joins the current batch. Disconnected
// clients drop the sample — history is best-effort by design of the update
// path.
func (c *Client) WriteThingProperty(stateID, property string, value float64, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"thing_properties",
		map[string]string{
			"state_id": stateID,
			"property": property,
		},
		map[string]any{"value": value},
		timestamp,
	)
	c.writeAPI.WritePoint(point)
}

// WriteSyncEvent records a dual-store operation outcome: which tenant, which
// operation (create/update/delete), and whether the state-store side
// succeeded.
func (c *Client) WriteSyncEvent(tenantID, operation string, mirrored bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sync_events",
		map[string]string{
			"tenant_id": tenantID,
			"operation": operation,
		},
		map[string]any{"mirrored": mirrored},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WritePoint records a custom measurement stamped now. Keep tags low
// cardinality; values belong in fields.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime records a custom measurement with an explicit
// timestamp, for samples observed earlier than they are written.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
