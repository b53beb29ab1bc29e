// Copyright (C) 2017 ScyllaDB

package kuduclient

import "time"

func (p *CachedProvider) SetValidity(d time.Duration) {
	p.validity = d
}
