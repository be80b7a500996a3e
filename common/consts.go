package common

import "time"

const DefaultResolveTimeout = 10 * time.Second
const ResolveRetries = 3
const ResolveRetryMinBackoff = 500 * time.Millisecond
const ResolveRetryMaxBackoff = 5 * time.Second
const ArchiveWarningSize = 25000
const ArchiveDangerSize = 100000
const ArchiveSizeLimit = 1000000 // recommended maximum, 1 MB
const ArchiveTotalFactor = 10
const DependenciesEntry = ".dependencies.json"
const VersionsEntry = ".versions.log"
const ChecksumsEntry = ".checksums.json"
