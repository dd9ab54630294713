// Package vantage ties the configuration client, the command client, the
// event stream and the object controllers into one client for a Vantage
// InFusion controller.
//
// Basic usage:
//
//	cfg := vantage.DefaultConfig("192.168.1.20")
//	cfg.Username, cfg.Password = "administrator", "secret"
//
//	v, err := vantage.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer v.Close()
//
//	if err := v.Initialize(ctx); err != nil {
//		return err
//	}
//	for _, load := range v.Loads.On() {
//		fmt.Println(load.Name, load.Level)
//	}
package vantage
