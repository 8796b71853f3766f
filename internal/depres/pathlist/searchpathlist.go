package pathlist

// BuildLinux assembles the effective Linux search path list:
//
//	compilerRedist ++ expand(prefixes) ++ systemDefault
//
// per spec.md section 4.3. Non-existent directories are dropped and the
// result is stable-deduplicated, keeping the first occurrence.
func BuildLinux(compilerRedist, prefixes, systemDefault PathList) PathList {
	expanded := ExpandPrefixes(prefixes, LinuxSuffixes(), true)
	all := Concat(compilerRedist, expanded, systemDefault)
	return Dedup(all, DirExists)
}

// BuildWindows assembles the effective Windows search path list:
//
//	compilerRedistRelease ++ compilerRedistDebug ++ expand(prefixes) ++
//	  {targetDir} ++ (hostPath if includeHostPath)
//
// per spec.md section 4.3. "include host PATH" is an explicit flag rather
// than an implicit runtime.GOOS check, per the open question in spec.md
// section 9.
func BuildWindows(compilerRedistRelease, compilerRedistDebug, prefixes PathList, targetDir string, hostPath PathList, includeHostPath bool) PathList {
	expanded := ExpandPrefixes(prefixes, WindowsSuffixes(), true)
	lists := []PathList{compilerRedistRelease, compilerRedistDebug, expanded, {targetDir}}
	if includeHostPath {
		lists = append(lists, hostPath)
	}
	all := Concat(lists...)
	return Dedup(all, DirExists)
}
