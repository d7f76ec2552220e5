// Package influxdb stores Thing property history.
//
// The state mirror feeds it: every numeric property on a mirrored
// live-state update becomes a point in the thing_properties measurement,
// tagged by state_id and property name. Writes go through the
// influxdb-client-go v2 non-blocking write API, batched per the
// config.yaml influxdb section, and batch failures surface only through
// the SetOnError callback — a down InfluxDB degrades to "no history",
// never to a blocked mirror.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled means run without history
//	}
//	defer client.Close()
//
//	client.WriteThingProperty("acme:sensor-7", "temperature", 21.5, time.Now())
package influxdb
