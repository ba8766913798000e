package questiongen

import "github.com/abhisek/examprep/internal/exam"

func q(topic, question, answer string, options ...string) exam.QuestionSpec {
	return exam.QuestionSpec{Question: question, Options: options, CorrectAnswer: answer, Topic: topic}
}

var bank = map[exam.Type][]exam.QuestionSpec{
	exam.TypeDSA: {
		q("Arrays", "What is the time complexity of accessing an element of an array by index?", "O(1)",
			"O(1)", "O(log n)", "O(n)", "O(n log n)"),
		q("Arrays", "Which technique finds a pair summing to a target in a sorted array in O(n)?", "Two pointers",
			"Two pointers", "Binary search per element", "Hashing with sorting", "Divide and conquer"),
		q("Trees", "Which traversal of a binary search tree yields keys in sorted order?", "In-order",
			"Pre-order", "In-order", "Post-order", "Level-order"),
		q("Trees", "What is the worst-case height of an unbalanced BST with n nodes?", "n - 1",
			"log n", "n / 2", "n - 1", "sqrt(n)"),
		q("Graphs", "Which algorithm finds shortest paths from one source with non-negative edge weights?", "Dijkstra's algorithm",
			"Kruskal's algorithm", "Dijkstra's algorithm", "Depth-first search", "Topological sort"),
		q("Graphs", "Which data structure does breadth-first search use to track the frontier?", "Queue",
			"Stack", "Queue", "Priority queue", "Deque used as a stack"),
		q("Graphs", "A topological ordering exists only for which kind of graph?", "Directed acyclic graph",
			"Undirected tree", "Directed acyclic graph", "Complete graph", "Bipartite graph"),
		q("Dynamic Programming", "Which two properties make a problem suitable for dynamic programming?", "Optimal substructure and overlapping subproblems",
			"Greedy choice and matroid structure", "Optimal substructure and overlapping subproblems", "Sorted input and unique keys", "Acyclic dependencies and small input"),
		q("Dynamic Programming", "What is the time complexity of the classic LCS DP for strings of length m and n?", "O(m * n)",
			"O(m + n)", "O(m * n)", "O(2^(m+n))", "O(m log n)"),
		q("Dynamic Programming", "Memoization is best described as which approach?", "Top-down recursion with caching",
			"Bottom-up table filling", "Top-down recursion with caching", "Greedy selection", "Backtracking with pruning"),
	},
	exam.TypeSQL: {
		q("Queries", "Which clause filters groups after aggregation?", "HAVING",
			"WHERE", "HAVING", "GROUP BY", "ORDER BY"),
		q("Queries", "What does SELECT COUNT(column) ignore?", "NULL values",
			"Duplicate values", "NULL values", "Zero values", "Nothing"),
		q("Queries", "In logical query processing, which clause is evaluated first?", "FROM",
			"SELECT", "WHERE", "FROM", "ORDER BY"),
		q("Joins", "Which join returns all rows from the left table and matching rows from the right?", "LEFT JOIN",
			"INNER JOIN", "LEFT JOIN", "RIGHT JOIN", "CROSS JOIN"),
		q("Joins", "A CROSS JOIN of tables with 4 and 5 rows returns how many rows?", "20",
			"9", "20", "5", "4"),
		q("Joins", "Which join can be written as a LEFT JOIN with the tables swapped?", "RIGHT JOIN",
			"FULL OUTER JOIN", "RIGHT JOIN", "SELF JOIN", "NATURAL JOIN"),
		q("Indexes", "Which index type is the default in most relational databases?", "B-tree",
			"Hash", "B-tree", "Bitmap", "GiST"),
		q("Indexes", "A composite index on (a, b) helps which predicate the most?", "WHERE a = ? AND b = ?",
			"WHERE b = ?", "WHERE a = ? AND b = ?", "WHERE a + b = ?", "WHERE b > ? OR a < ?"),
		q("Optimization", "Which statement shows how the database plans to execute a query?", "EXPLAIN",
			"DESCRIBE", "EXPLAIN", "ANALYZE TABLE", "SHOW INDEX"),
		q("Optimization", "Wrapping an indexed column in a function inside WHERE usually does what?", "Prevents use of the index",
			"Speeds up the lookup", "Prevents use of the index", "Creates a temporary index", "Has no effect"),
	},
	exam.TypeCN: {
		q("TCP/IP", "How many messages are exchanged in the TCP connection handshake?", "3",
			"2", "3", "4", "5"),
		q("TCP/IP", "Which layer of the TCP/IP model does IP belong to?", "Internet layer",
			"Transport layer", "Internet layer", "Link layer", "Application layer"),
		q("TCP/IP", "Which protocol is connectionless?", "UDP",
			"TCP", "UDP", "TLS", "SCTP"),
		q("HTTP", "Which HTTP method is idempotent but not safe?", "PUT",
			"GET", "POST", "PUT", "HEAD"),
		q("HTTP", "What does HTTP status 304 mean?", "Not Modified",
			"Moved Permanently", "Not Modified", "Found", "Temporary Redirect"),
		q("HTTP", "Which HTTP version multiplexes streams over a single QUIC connection?", "HTTP/3",
			"HTTP/1.1", "HTTP/2", "HTTP/3", "HTTP/1.0"),
		q("DNS", "Which DNS record maps a name to an IPv6 address?", "AAAA",
			"A", "AAAA", "CNAME", "MX"),
		q("DNS", "DNS queries use which transport by default?", "UDP port 53",
			"TCP port 80", "UDP port 53", "TCP port 443", "UDP port 67"),
		q("Security", "What does TLS primarily provide?", "Encryption and authentication of the channel",
			"Routing between networks", "Encryption and authentication of the channel", "Address translation", "Congestion control"),
		q("Security", "A SYN flood attacks which resource?", "The server's half-open connection queue",
			"DNS resolver caches", "The server's half-open connection queue", "ARP tables", "TLS session tickets"),
	},
	exam.TypeDBMS: {
		q("Normalization", "A relation in 2NF must have no partial dependency on what?", "A candidate key",
			"A foreign key", "A candidate key", "A non-key attribute", "An index"),
		q("Normalization", "BCNF requires every determinant to be what?", "A superkey",
			"A primary key column", "A superkey", "Atomic", "Non-null"),
		q("Normalization", "Which anomaly occurs when deleting a row loses unrelated facts?", "Deletion anomaly",
			"Insertion anomaly", "Update anomaly", "Deletion anomaly", "Phantom read"),
		q("ACID", "Which ACID property guarantees committed data survives a crash?", "Durability",
			"Atomicity", "Consistency", "Isolation", "Durability"),
		q("ACID", "Write-ahead logging mainly supports which properties?", "Atomicity and durability",
			"Isolation and consistency", "Atomicity and durability", "Consistency only", "Isolation only"),
		q("ACID", "Atomicity means a transaction is what?", "All or nothing",
			"Executed in isolation", "All or nothing", "Always consistent", "Logged before commit"),
		q("Transactions", "Which isolation level prevents dirty reads but allows non-repeatable reads?", "Read Committed",
			"Read Uncommitted", "Read Committed", "Repeatable Read", "Serializable"),
		q("Transactions", "Two-phase locking guarantees which schedule property?", "Conflict serializability",
			"Deadlock freedom", "Conflict serializability", "Starvation freedom", "Cascadelessness"),
		q("Transactions", "A phantom read involves what?", "New rows matching a repeated range query",
			"Reading uncommitted data", "New rows matching a repeated range query", "A lost update", "A deadlock victim"),
		q("Transactions", "Which technique avoids readers blocking writers by keeping row versions?", "MVCC",
			"Two-phase commit", "MVCC", "Strict 2PL", "Timestamp ordering without versions"),
	},
	exam.TypeOS: {
		q("Processes", "Which system call creates a new process on Unix?", "fork",
			"exec", "fork", "wait", "spawn"),
		q("Processes", "What does a context switch save?", "The CPU state of the running process",
			"The process's heap", "The CPU state of the running process", "The page table on disk", "Open file contents"),
		q("Processes", "Which condition is NOT required for deadlock?", "Preemption",
			"Mutual exclusion", "Hold and wait", "Preemption", "Circular wait"),
		q("Memory", "A page fault occurs when a process accesses what?", "A page not resident in physical memory",
			"A freed heap block", "A page not resident in physical memory", "A read-only register", "Another process's stack"),
		q("Memory", "Which page replacement algorithm can suffer from Belady's anomaly?", "FIFO",
			"LRU", "Optimal", "FIFO", "LFU with aging"),
		q("Memory", "What does the TLB cache?", "Virtual-to-physical address translations",
			"Recently used files", "Virtual-to-physical address translations", "Disk blocks", "Interrupt vectors"),
		q("Scheduling", "Which scheduling algorithm minimizes average waiting time when burst times are known?", "Shortest Job First",
			"First Come First Served", "Round Robin", "Shortest Job First", "Priority with aging"),
		q("Scheduling", "Round Robin with a very large quantum behaves like which algorithm?", "FCFS",
			"SJF", "FCFS", "Multilevel queue", "EDF"),
		q("Scheduling", "Aging is used to prevent what?", "Starvation",
			"Deadlock", "Starvation", "Thrashing", "Fragmentation"),
		q("Memory", "Thrashing happens when what?", "The system spends most time paging",
			"Too many threads share a lock", "The system spends most time paging", "The disk is full", "A process leaks file descriptors"),
	},
}
