// Package providers registers every built-in provider with the default
// registry. Import it for side effects:
//
//	import _ "github.com/clipsave/clipsave/providers"
package providers

import (
	_ "github.com/clipsave/clipsave/providers/infoapi"
	_ "github.com/clipsave/clipsave/providers/snapinsta"
	_ "github.com/clipsave/clipsave/providers/tikwm"
	_ "github.com/clipsave/clipsave/providers/vidfetch"
	_ "github.com/clipsave/clipsave/providers/ytnative"
)
