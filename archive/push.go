/*------------------------------------------------------------------------------
* push.go : push run counters to a prometheus pushgateway
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package archive

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

/* push gathered counters grouped by run id and mjd */
func PushDiagnostics(url, job, run string, mjd int, g prometheus.Gatherer) error {
	err := push.New(url, job).
		Gatherer(g).
		Grouping("run", run).
		Grouping("mjd", fmt.Sprintf("%d", mjd)).
		Push()
	if err != nil {
		return fmt.Errorf("push counters to %s: %w", url, err)
	}
	return nil
}
