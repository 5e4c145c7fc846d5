package css

import _ "embed"

// userAgentCSS is the default stylesheet applied below author styles.
//
//go:embed useragent.css
var userAgentCSS string
