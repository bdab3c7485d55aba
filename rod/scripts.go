package rod

// Scripts evaluated in the page. Each is a function expression that rod
// calls with JSON-encoded arguments.

// extractJS returns the page location and serialized document.
const extractJS = `() => ({
	url: location.href,
	body: document.documentElement ? document.documentElement.outerHTML : "",
})`

// focusJS reports whether the page is visible and focused.
const focusJS = `() => ({
	visible: document.visibilityState === "visible",
	focused: document.hasFocus(),
})`

// locateJS finds the first text node, in document order, that contains
// the fragment. Text inside script, style, noscript and template elements
// is skipped. The document is not modified. Returns null on no match.
const locateJS = `(fragment) => {
	if (!fragment) return null;
	const root = document.body || document.documentElement;
	if (!root) return null;

	const skip = new Set(["SCRIPT", "STYLE", "NOSCRIPT", "TEMPLATE"]);
	const walker = document.createTreeWalker(root, NodeFilter.SHOW_TEXT, {
		acceptNode(node) {
			for (let p = node.parentNode; p; p = p.parentNode) {
				if (skip.has(p.nodeName)) return NodeFilter.FILTER_REJECT;
				if (p === root) break;
			}
			return NodeFilter.FILTER_ACCEPT;
		},
	});

	const pathOf = (el) => {
		const parts = [];
		for (; el && el.nodeType === Node.ELEMENT_NODE; el = el.parentElement) {
			const tag = el.localName;
			if (!el.parentElement) {
				parts.unshift(tag);
				break;
			}
			let n = 1;
			for (let s = el.previousElementSibling; s; s = s.previousElementSibling) {
				if (s.localName === tag) n++;
			}
			parts.unshift(tag + ":nth-of-type(" + n + ")");
		}
		return parts.join(" > ");
	};

	let node;
	while ((node = walker.nextNode())) {
		const start = node.data.indexOf(fragment);
		if (start === -1) continue;
		const end = start + fragment.length;

		const range = document.createRange();
		range.setStart(node, start);
		range.setEnd(node, end);
		const r = range.getBoundingClientRect();
		const parent = node.parentNode;

		return {
			path: pathOf(parent),
			nodeIndex: Array.prototype.indexOf.call(parent.childNodes, node),
			text: node.data,
			startOffset: start,
			endOffset: end,
			rect: { x: r.left, y: r.top, width: r.width, height: r.height },
			scrollX: window.scrollX,
			scrollY: window.scrollY,
		};
	}
	return null;
}`

// highlightJS places a non-interactive overlay over the match in document
// coordinates and scrolls it into view.
const highlightJS = `(m, offset) => {
	const mark = document.createElement("div");
	mark.setAttribute("data-recall-highlight", "");
	Object.assign(mark.style, {
		position: "absolute",
		left: (m.rect.x + m.scrollX) + "px",
		top: (m.rect.y + m.scrollY) + "px",
		width: m.rect.width + "px",
		height: m.rect.height + "px",
		background: "rgba(255, 230, 0, 0.45)",
		outline: "2px solid rgba(255, 170, 0, 0.9)",
		borderRadius: "2px",
		pointerEvents: "none",
		zIndex: "2147483647",
	});
	(document.body || document.documentElement).appendChild(mark);
	window.scrollTo({ top: Math.max(0, m.rect.y + m.scrollY - offset), behavior: "smooth" });
	return true;
}`
