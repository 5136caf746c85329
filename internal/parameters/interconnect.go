/*
	TIA - Interconnect parameters

	Copyright (c) 2026, The TIA Authors

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package parameters

import (
	"sort"

	"github.com/opencgra/tia/internal/tiaerr"
)

// RouterType selects an interconnect router implementation. Only
// RouterSoftware is implemented today; the others are reserved.
type RouterType int

const (
	RouterSoftware RouterType = iota
	RouterSwitch
	RouterVirtualCircuit
)

var routerTypeNames = map[string]RouterType{
	"software":         RouterSoftware,
	"switch":           RouterSwitch,
	"virtual_circuit":  RouterVirtualCircuit,
}

// ParseRouterType resolves the configuration-file router_type string.
func ParseRouterType(name string) (RouterType, error) {
	rt, ok := routerTypeNames[name]
	if !ok {
		return 0, tiaerr.NewParameterError("router_type", "unrecognized router type "+name)
	}
	return rt, nil
}

var interconnectKeys = map[string]bool{
	"router_type":              true,
	"num_router_sources":       true,
	"num_router_destinations":  true,
	"num_input_channels":       true,
	"num_output_channels":      true,
	"router_buffer_depth":      true,
	"num_physical_planes":      true,
}

// Interconnect holds the physical constraints of routers and links.
type Interconnect struct {
	RouterType             RouterType
	NumRouterSources       int
	NumRouterDestinations  int
	NumInputChannels       int
	NumOutputChannels      int
	RouterBufferDepth      int
	NumPhysicalPlanes      int

	set map[string]bool
}

// InterconnectFromMap constructs an Interconnect from a name->value
// mapping using the exact recognized key set.
func InterconnectFromMap(values map[string]any) (*Interconnect, error) {
	ip := &Interconnect{set: make(map[string]bool, len(values))}
	for key, value := range values {
		if !interconnectKeys[key] {
			return nil, tiaerr.NewParameterError(key, "unrecognized interconnect parameter key")
		}
		var err error
		switch key {
		case "router_type":
			name, asErr := asString(key, value)
			if asErr != nil {
				err = asErr
				break
			}
			ip.RouterType, err = ParseRouterType(name)
		case "num_router_sources":
			ip.NumRouterSources, err = asInt(key, value)
		case "num_router_destinations":
			ip.NumRouterDestinations, err = asInt(key, value)
		case "num_input_channels":
			ip.NumInputChannels, err = asInt(key, value)
		case "num_output_channels":
			ip.NumOutputChannels, err = asInt(key, value)
		case "router_buffer_depth":
			ip.RouterBufferDepth, err = asInt(key, value)
		case "num_physical_planes":
			ip.NumPhysicalPlanes, err = asInt(key, value)
		}
		if err != nil {
			return nil, err
		}
		ip.set[key] = true
	}
	return ip, nil
}

// Validate reports the first recognized key never supplied to InterconnectFromMap.
func (ip *Interconnect) Validate() error {
	missing := make([]string, 0, len(interconnectKeys))
	for key := range interconnectKeys {
		if key == "router_type" {
			continue // zero value RouterSoftware is a legitimate default, not "unset"
		}
		if !ip.set[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return tiaerr.NewParameterError(missing[0], "missing required interconnect parameter")
	}
	return nil
}
