package mpc

// Discovery is the column-13 marker of an observation line: blank for a
// routine observation, '&' for a later line of a discovery triplet, '*'
// for the initial discovery line itself.
type Discovery struct {
	IsDiscovery        bool
	IsInitialDiscovery bool
}

// NewDiscovery marks a record as (initial) discovery or not. A record
// marked true starts as an initial discovery; the writer demotes later
// ones to the continuation marker on emission.
func NewDiscovery(isDiscovery bool) Discovery {
	return Discovery{IsDiscovery: isDiscovery, IsInitialDiscovery: isDiscovery}
}

// DiscoveryFromMarker builds a Discovery from the wire marker
// character. Only '*', '&', a space or the empty string are legal.
func DiscoveryFromMarker(marker string) (Discovery, error) {
	switch marker {
	case "*":
		return Discovery{IsDiscovery: true, IsInitialDiscovery: true}, nil
	case "&":
		return Discovery{IsDiscovery: true}, nil
	case " ", "":
		return Discovery{}, nil
	}
	return Discovery{}, fieldErr("discovery", "must be one of '', ' ', '&', '*'", marker)
}

func (d Discovery) String() string {
	if d.IsInitialDiscovery {
		return "*"
	}
	if d.IsDiscovery {
		return "&"
	}
	return " "
}
