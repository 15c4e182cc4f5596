package mcpserver

// Tool descriptions carry interpretation notes for the calling model.

func describeAggregate() string {
	return `Aggregates per-file change records into one summary per commit.

USE WHEN:
- Reconstructing the commit scatterplot for a repository or loc.csv export
- Finding the largest commits in a period
- Moving a time slider: pass until or progress to cut the history

INTERPRETING RESULTS:
- Summaries keep the order in which commits first appear in the records
- timestamp is the earliest record time in the commit
- time_of_day is the mean fractional hour of the commit's records (0-24)
- by_type lists lines changed per file type, largest contributor decides the dot colour
- total counts commits before the window was applied

FIELDS RETURNED:
- window, total, summaries[commit, timestamp, total_lines, time_of_day, by_type, records, files]`
}

func describeRollup() string {
	return `Groups change records by a key and counts them or sums their lines.

USE WHEN:
- Comparing file types by volume of change
- Finding the most edited files
- Building per-day, per-year or per-hour histograms

INTERPRETING RESULTS:
- Groups are in first-seen order, not sorted
- measure "records" counts change records; "lines" sums lines changed
- Missing types are reported under "other"

FIELDS RETURNED:
- by, measure, groups[key, value]`
}

func describeSelect() string {
	return `Selects the commits inside a brush over commit date and time of day.

USE WHEN:
- Asking what was worked on during office hours versus at night
- Breaking down a burst of activity by language

INTERPRETING RESULTS:
- min_hour/max_hour are fractional hours; 13.5 is 13:30
- Shares are percentages of selected lines with one decimal
- Indices point into the window-filtered commit list

FIELDS RETURNED:
- brush, selection[commits, total_lines, shares[type, lines, percent], indices]`
}

func describeOverview() string {
	return `Summarises a record set: files, types, commits, lines and per-commit distribution.

USE WHEN:
- Getting a first look at a repository's history
- Checking how a time window changes overall activity

INTERPRETING RESULTS:
- per_commit holds mean, standard deviation and percentiles of lines per commit
- A p95 far above the median points at a few very large commits
- busiest_type is the type with the most changed lines

FIELDS RETURNED:
- files, types, records, commits, total_lines, first, last, per_commit, busiest_type`
}

func describeProjects() string {
	return `Filters a project list by free text and year and counts the remainder per year.

USE WHEN:
- Searching a portfolio for a technology or topic
- Producing the per-year pie data for a filtered list

INTERPRETING RESULTS:
- The query matches any field, case-insensitively
- slices count the filtered projects per year; the selected year is flagged

FIELDS RETURNED:
- filter, projects, slices[label, value, selected]`
}
