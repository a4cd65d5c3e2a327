package indexer

// Sentinel marks a padding slot a child must skip rather than index
// (spec §4.3 "Partitioning").
const Sentinel = ""

// Partition splits files into at most workerCount equal-length chunks of
// ceil(len(files) / workerCount) entries each, padding the last chunk with
// Sentinel entries so every chunk has the same length (spec §4.3:
// "chunk_size = total_files / worker_count ... pads the last chunk with
// sentinel entries"). Because the chunk size is rounded up, fewer than
// workerCount chunks can result (5 files over 4 workers gives 3 chunks).
// workerCount <= 0 or more than len(files) collapses to one file per chunk.
func Partition(files []string, workerCount int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if workerCount <= 0 || workerCount > len(files) {
		workerCount = len(files)
	}

	chunkSize := len(files) / workerCount
	if len(files)%workerCount != 0 {
		chunkSize++
	}

	chunks := make([][]string, 0, workerCount)
	for i := 0; i < len(files); i += chunkSize {
		end := i + chunkSize
		if end > len(files) {
			end = len(files)
		}
		chunk := append([]string(nil), files[i:end]...)
		for len(chunk) < chunkSize {
			chunk = append(chunk, Sentinel)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
