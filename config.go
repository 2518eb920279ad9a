package mathfilter

import "github.com/goliatone/go-mathfilter/internal/runtimeconfig"

var (
	ErrFamiliesRequired        = runtimeconfig.ErrFamiliesRequired
	ErrFamilyInvalid           = runtimeconfig.ErrFamilyInvalid
	ErrFamilyDuplicate         = runtimeconfig.ErrFamilyDuplicate
	ErrWrapperTagInvalid       = runtimeconfig.ErrWrapperTagInvalid
	ErrWrapperTagTransparent   = runtimeconfig.ErrWrapperTagTransparent
	ErrFamilyAttributeInvalid  = runtimeconfig.ErrFamilyAttributeInvalid
	ErrMaxDepthInvalid         = runtimeconfig.ErrMaxDepthInvalid
	ErrCacheCapacityInvalid    = runtimeconfig.ErrCacheCapacityInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigRead              = runtimeconfig.ErrConfigRead
)

type (
	Config          = runtimeconfig.Config
	FamilyConfig    = runtimeconfig.FamilyConfig
	DelimiterConfig = runtimeconfig.DelimiterConfig
	FamilyList      = runtimeconfig.FamilyList
	HandlersConfig  = runtimeconfig.HandlersConfig
	CacheConfig     = runtimeconfig.CacheConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML or JSON file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
