package app

import (
	"github.com/logari84/OnChipDataCompression/internal/analyzers/dictbuilder"
	"github.com/logari84/OnChipDataCompression/internal/analyzers/encodercheck"
	"github.com/logari84/OnChipDataCompression/internal/registry"
)

// coreModules lists every analyzer module compiled into the binary. A process
// configuration may reference any analyzer type these modules register.
var coreModules = []registry.Module{
	&dictbuilder.Module{},
	&encodercheck.Module{},
}
